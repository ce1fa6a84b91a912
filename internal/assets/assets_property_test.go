//go:build property

package assets

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var segment = gen.OneConstOf("govuk", "components", "button", "..", ".", "all.scss", "index.mjs", "_index.scss")

// TestOutputProperties checks that remapped outputs never leave DestPath.
func TestOutputProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)
	dest := filepath.FromSlash("/project/package")

	properties.Property("remapped outputs stay beneath the destination", prop.ForAll(
		func(source, remap []string) bool {
			opts := Options{
				DestPath: dest,
				FilePath: func(p ParsedPath) string { return p.Join(strings.Join(remap, "/")) },
			}
			out, err := opts.Output(strings.Join(source, "/"), "")
			if err != nil {
				return true
			}
			return out == dest || strings.HasPrefix(out, dest+string(filepath.Separator))
		},
		gen.SliceOfN(3, segment),
		gen.SliceOfN(3, segment),
	))

	properties.Property("an extension swap keeps the directory", prop.ForAll(
		func(dirs []string, name string) bool {
			rel := strings.Join(append(dirs, name+".scss"), "/")
			out, err := Options{DestPath: dest, FilePath: WithExt(".css")}.Output(rel, "")
			if err != nil {
				return false
			}
			want := filepath.Join(append([]string{dest}, append(dirs, name+".css")...)...)
			return out == want
		},
		gen.SliceOfN(2, gen.OneConstOf("govuk", "components", "button")),
		gen.OneConstOf("all", "index", "button"),
	))

	properties.TestingRun(t)
}
