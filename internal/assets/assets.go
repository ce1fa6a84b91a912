// Package assets holds what every compilation adapter shares: the options
// describing where an adapter reads and writes, glob resolution of source
// files and the output path remapping.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/paths"
	"github.com/spf13/afero"
)

// ParsedPath is a relative source path split into its parts. Dir, Base and
// Name use forward slashes regardless of platform.
type ParsedPath struct {
	Root string
	Dir  string
	Base string
	Ext  string
	Name string
}

// Parse splits a slash-separated relative path.
func Parse(rel string) ParsedPath {
	rel = filepath.ToSlash(rel)
	dir, base := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	ext := path.Ext(base)

	p := ParsedPath{
		Dir:  dir,
		Base: base,
		Ext:  ext,
		Name: strings.TrimSuffix(base, ext),
	}
	if strings.HasPrefix(rel, "/") {
		p.Root = "/"
	}
	return p
}

// Join returns the path with a different base name, e.g.
// p.Join(p.Name + ".min.js").
func (p ParsedPath) Join(base string) string {
	return path.Join(p.Dir, base)
}

// String reassembles the path.
func (p ParsedPath) String() string {
	return path.Join(p.Dir, p.Base)
}

// FilePathFunc remaps a source path to the output path relative to the
// destination. It must be pure.
type FilePathFunc func(ParsedPath) string

// WithExt returns a FilePathFunc that keeps the directory and name and
// swaps the extension.
func WithExt(ext string) FilePathFunc {
	return func(p ParsedPath) string {
		return p.Join(p.Name + ext)
	}
}

// Options configures one adapter call.
type Options struct {
	SrcPath  string
	DestPath string
	FilePath FilePathFunc
	// Ignore lists globs, relative to the walked root, that are never
	// matched (and for clean, never deleted).
	Ignore []string
	// ConfigPath is an absolute compiler config file, e.g. a tsconfig.
	ConfigPath string
	Fs         afero.Fs
}

// FromTask builds Options from resolved TaskOptions.
func FromTask(opts paths.TaskOptions) Options {
	return Options{SrcPath: opts.SrcPath, DestPath: opts.DestPath, ConfigPath: opts.ConfigPath}
}

// FS returns the configured filesystem, the OS filesystem by default.
func (o Options) FS() afero.Fs {
	if o.Fs == nil {
		return afero.NewOsFs()
	}
	return o.Fs
}

// AssetEntry is one compilation unit: a module path and where it goes.
type AssetEntry struct {
	ModulePath string
	Options    Options
}

// Match is one resolved source file.
type Match struct {
	Rel  string // slash-separated, relative to the walked root
	Path string // absolute
}

// Resolve walks root and returns the files matching pattern and not
// matching ignore, in lexical order. A missing root yields no matches and
// ok=false so the caller can report it.
func Resolve(fsys afero.Fs, root, pattern string, ignore []string) (matches []Match, ok bool, err error) {
	include, err := NewMatcher(pattern)
	if err != nil {
		return nil, false, err
	}
	exclude, err := NewMatcher(ignore...)
	if err != nil {
		return nil, false, err
	}

	if _, err := fsys.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading source root", root)
	}

	err = afero.Walk(fsys, root, func(p string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return kiterrors.WrapIO(walkErr, kiterrors.ErrCodeReadFailed, "walking source tree", p)
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if include.Match(rel) && !exclude.Match(rel) {
			matches = append(matches, Match{Rel: rel, Path: p})
		}
		return nil
	})
	if err != nil {
		return nil, true, err
	}

	return matches, true, nil
}

// Output returns the absolute output path of a matched source. Without a
// FilePath the relative path is kept and defaultExt (if set) replaces the
// extension. The result must stay beneath DestPath.
func (o Options) Output(rel, defaultExt string) (string, error) {
	parsed := Parse(rel)

	var out string
	switch {
	case o.FilePath != nil:
		out = o.FilePath(parsed)
	case defaultExt != "":
		out = parsed.Join(parsed.Name + defaultExt)
	default:
		out = parsed.String()
	}

	dest := filepath.Clean(o.DestPath)
	full := filepath.Join(dest, filepath.FromSlash(out))
	if full != dest && !strings.HasPrefix(full, dest+string(filepath.Separator)) {
		return "", kiterrors.NewConfigError(kiterrors.ErrCodeInvalidPath,
			fmt.Sprintf("output %q escapes destination %q", out, o.DestPath))
	}
	return full, nil
}

// WriteFile writes data to name, creating parent directories.
func WriteFile(fsys afero.Fs, name string, data []byte, perm os.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeWriteFailed, "creating output directory", filepath.Dir(name))
	}
	if err := afero.WriteFile(fsys, name, data, perm); err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeWriteFailed, "writing output", name)
	}
	return nil
}
