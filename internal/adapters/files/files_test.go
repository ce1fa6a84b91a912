package files

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/conneroisu/frontkit/internal/assets"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, fsys afero.Fs, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, assets.WriteFile(fsys, filepath.Join(root, filepath.FromSlash(name)), []byte(name), 0o644))
	}
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	return ok
}

func TestCleanKeepsIgnored(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dist := "/project/dist"
	seed(t, fsys, dist, "package.json", "index.js")

	err := New(nil).Clean(context.Background(), "*", assets.Options{
		DestPath: dist,
		Ignore:   []string{"**/package.json"},
		Fs:       fsys,
	})
	require.NoError(t, err)

	assert.True(t, exists(t, fsys, filepath.Join(dist, "package.json")))
	assert.False(t, exists(t, fsys, filepath.Join(dist, "index.js")))
}

func TestCleanMatchedDirectoryHoldingIgnored(t *testing.T) {
	fsys := afero.NewMemMapFs()
	dist := "/dist"
	seed(t, fsys, dist, "package.json", "index.js", "sub/package.json", "sub/a.js", "sub/deep/b.js")

	err := New(nil).Clean(context.Background(), "*", assets.Options{
		DestPath: dist,
		Ignore:   []string{"**/package.json"},
		Fs:       fsys,
	})
	require.NoError(t, err)

	assert.True(t, exists(t, fsys, "/dist/package.json"))
	assert.True(t, exists(t, fsys, "/dist/sub/package.json"))
	for _, gone := range []string{"/dist/index.js", "/dist/sub/a.js", "/dist/sub/deep"} {
		assert.False(t, exists(t, fsys, gone), gone)
	}
}

func TestCleanRecursive(t *testing.T) {
	fsys := afero.NewMemMapFs()
	pkg := "/project/package"
	seed(t, fsys, pkg,
		"package.json",
		"README.md",
		"govuk/all.js",
		"govuk/components/button/button.js",
		"govuk/package.json",
		"govuk-esm/all.mjs",
	)

	err := New(nil).Clean(context.Background(), "**/*", assets.Options{
		DestPath: pkg,
		Ignore:   []string{"**/package.json", "**/README.md"},
		Fs:       fsys,
	})
	require.NoError(t, err)

	for _, kept := range []string{"package.json", "README.md", "govuk/package.json"} {
		assert.True(t, exists(t, fsys, filepath.Join(pkg, kept)), kept)
	}
	for _, gone := range []string{"govuk/all.js", "govuk/components", "govuk-esm"} {
		assert.False(t, exists(t, fsys, filepath.Join(pkg, gone)), gone)
	}
}

func TestCleanMissingDestination(t *testing.T) {
	err := New(nil).Clean(context.Background(), "**/*", assets.Options{
		DestPath: "/nowhere",
		Fs:       afero.NewMemMapFs(),
	})
	assert.NoError(t, err)
}

func TestCleanInvalidIgnore(t *testing.T) {
	fsys := afero.NewMemMapFs()
	seed(t, fsys, "/dist", "a.js")

	err := New(nil).Clean(context.Background(), "*", assets.Options{
		DestPath: "/dist",
		Ignore:   []string{"[broken"},
		Fs:       fsys,
	})
	require.Error(t, err)
	assert.True(t, exists(t, fsys, "/dist/a.js"), "nothing is deleted when the ignore list is invalid")
}

func TestCopy(t *testing.T) {
	fsys := afero.NewMemMapFs()
	seed(t, fsys, "/project/src", "assets/images/logo.png", "assets/fonts/bold.woff2", "all.mjs")

	err := New(nil).Copy(context.Background(), "assets/**/*", assets.Options{
		SrcPath:  "/project/src",
		DestPath: "/project/dist",
		Fs:       fsys,
	})
	require.NoError(t, err)

	data, err := afero.ReadFile(fsys, "/project/dist/assets/images/logo.png")
	require.NoError(t, err)
	assert.Equal(t, "assets/images/logo.png", string(data))
	assert.True(t, exists(t, fsys, "/project/dist/assets/fonts/bold.woff2"))
	assert.False(t, exists(t, fsys, "/project/dist/all.mjs"))
}

func TestCopyRemapAndMode(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	err := New(nil).Copy(context.Background(), "*.sh", assets.Options{
		SrcPath:  src,
		DestPath: filepath.Join(root, "dist"),
		FilePath: func(p assets.ParsedPath) string { return p.Join("bin/" + p.Name) },
	})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(root, "dist", "bin", "run"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyMissingSourceIsNoop(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := New(nil).Copy(context.Background(), "**/*", assets.Options{
		SrcPath:  "/missing",
		DestPath: "/dist",
		Fs:       fsys,
	})
	require.NoError(t, err)
	assert.False(t, exists(t, fsys, "/dist"))
}
