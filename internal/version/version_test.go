package version

import (
	"testing"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersionFromLdflags(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "1.4.0"
	assert.Equal(t, "1.4.0", GetVersion())
	assert.Equal(t, "1.4.0", GetBuildInfo().Version)
}

func TestParseTime(t *testing.T) {
	assert.True(t, parseTime("unknown").IsZero())
	assert.True(t, parseTime("yesterday").IsZero())
	assert.Equal(t, 2024, parseTime("2024-03-01T10:00:00Z").Year())
	assert.Equal(t, 3, int(parseTime("2024-03-01 10:00:00").Month()))
}

func TestReadPackage(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/repo/package.json",
		[]byte(`{"name": "govuk-frontend", "version": "5.4.1", "private": false}`), 0o644))

	pkg, err := ReadPackage(fsys, "/repo")
	require.NoError(t, err)
	assert.Equal(t, Package{Name: "govuk-frontend", Version: "5.4.1"}, pkg)
	assert.Equal(t, "govuk-frontend-5.4.1", Versioned(pkg.Name, pkg.Version))
}

func TestVersionedScopedName(t *testing.T) {
	tests := []struct {
		name     string
		pkg      string
		expected string
	}{
		{name: "plain", pkg: "govuk-frontend", expected: "govuk-frontend-5.4.1"},
		{name: "scoped", pkg: "@govuk/frontend", expected: "frontend-5.4.1"},
		{name: "backslash", pkg: `@govuk\frontend`, expected: "frontend-5.4.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stem := Versioned(tt.pkg, "5.4.1")
			assert.Equal(t, tt.expected, stem)
			assert.NotContains(t, stem, "/")
		})
	}
}

func TestReadPackageErrors(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/bad/package.json", []byte(`{"name": `), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/noversion/package.json", []byte(`{"name": "x"}`), 0o644))

	_, err := ReadPackage(fsys, "/missing")
	assert.True(t, kiterrors.IsType(err, kiterrors.ErrorTypeIO))

	_, err = ReadPackage(fsys, "/bad")
	assert.True(t, kiterrors.IsType(err, kiterrors.ErrorTypeValidation))

	_, err = ReadPackage(fsys, "/noversion")
	assert.True(t, kiterrors.IsType(err, kiterrors.ErrorTypeValidation))
}
