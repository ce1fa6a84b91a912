package scripts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func minJS(p assets.ParsedPath) string {
	return p.Join(p.Name + ".min.js")
}

func TestCompileBundlesEntry(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dist")
	writeSources(t, src, map[string]string{
		"all.mjs": `import { Button } from './components/button/button.mjs'
export function initAll () { return new Button(document.body) }
`,
		"components/button/button.mjs": `export class Button {
  constructor ($module) { this.$module = $module }
}
`,
	})

	adapter := New(nil, Config{Format: FormatIIFE, GlobalName: "GOVUKFrontend", Minify: true, Bundle: true})
	err := adapter.Compile(context.Background(), "all.mjs", assets.Options{
		SrcPath:  src,
		DestPath: dest,
		FilePath: minJS,
	})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dest, "all.min.js"))
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Contains(t, string(out), "GOVUKFrontend")
	assert.NotContains(t, string(out), "import ")

	_, err = os.Stat(filepath.Join(dest, "components"))
	assert.True(t, os.IsNotExist(err), "only the matched entry is emitted")
}

func TestCompileIsIdempotent(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "dist")
	writeSources(t, src, map[string]string{
		"all.mjs": "export const version = '1.0.0'\nexport function init () { return version }\n",
	})

	adapter := New(nil, DefaultConfig())
	opts := assets.Options{SrcPath: src, DestPath: dest, FilePath: minJS}

	require.NoError(t, adapter.Compile(context.Background(), "all.mjs", opts))
	first, err := os.ReadFile(filepath.Join(dest, "all.min.js"))
	require.NoError(t, err)

	require.NoError(t, adapter.Compile(context.Background(), "all.mjs", opts))
	second, err := os.ReadFile(filepath.Join(dest, "all.min.js"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompileESMPerFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	dest := filepath.Join(root, "package")
	writeSources(t, src, map[string]string{
		"common/index.mjs":               "export function closest () {}\n",
		"components/accordion/index.mjs": "import { closest } from '../../common/index.mjs'\nexport { closest }\n",
	})

	adapter := New(nil, Config{Format: FormatESM})
	require.NoError(t, adapter.Compile(context.Background(), "**/*.mjs", assets.Options{SrcPath: src, DestPath: dest}))

	for _, name := range []string{"common/index.mjs", "components/accordion/index.mjs"} {
		info, err := os.Stat(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size())
	}
}

func TestCompileResolvesConfigAliases(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeSources(t, root, map[string]string{
		"jsconfig.json":                    `{"compilerOptions": {"baseUrl": ".", "paths": {"@components/*": ["src/components/*"]}}}`,
		"src/all.mjs":                      "import { Button } from '@components/button/button.mjs'\nexport { Button }\n",
		"src/components/button/button.mjs": "export class Button {}\n",
	})

	adapter := New(nil, Config{Format: FormatIIFE, GlobalName: "GOVUKFrontend", Bundle: true})
	opts := assets.Options{SrcPath: src, DestPath: filepath.Join(root, "dist"), FilePath: minJS}

	err := adapter.Compile(context.Background(), "all.mjs", opts)
	require.Error(t, err, "the alias only resolves through the config file")

	opts.ConfigPath = filepath.Join(root, "jsconfig.json")
	require.NoError(t, adapter.Compile(context.Background(), "all.mjs", opts))

	out, err := os.ReadFile(filepath.Join(root, "dist", "all.min.js"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "Button")
}

func TestCompileSyntaxError(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeSources(t, src, map[string]string{
		"broken.mjs": "export const = 1\n",
	})

	err := New(nil, DefaultConfig()).Compile(context.Background(), "broken.mjs", assets.Options{
		SrcPath:  src,
		DestPath: filepath.Join(root, "dist"),
	})
	require.Error(t, err)

	var be *kiterrors.BuildError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, kiterrors.ErrorTypeCompile, be.Type)
	assert.Contains(t, be.FilePath, "broken.mjs")
	assert.Equal(t, 1, be.Line)

	_, statErr := os.Stat(filepath.Join(root, "dist", "broken.js"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCompileUnknownFormat(t *testing.T) {
	err := New(nil, Config{Format: "amd"}).Compile(context.Background(), "*.mjs", assets.Options{
		SrcPath:  t.TempDir(),
		DestPath: t.TempDir(),
	})
	assert.True(t, kiterrors.IsConfigError(err))
}

func TestCompileUMDNeedsGlobalName(t *testing.T) {
	err := New(nil, Config{Format: FormatUMD}).Compile(context.Background(), "*.mjs", assets.Options{
		SrcPath:  t.TempDir(),
		DestPath: t.TempDir(),
	})
	assert.True(t, kiterrors.IsConfigError(err))
}

func TestDefaultExt(t *testing.T) {
	assert.Equal(t, ".mjs", Config{Format: FormatESM}.DefaultExt())
	assert.Equal(t, ".js", DefaultConfig().DefaultExt())
}
