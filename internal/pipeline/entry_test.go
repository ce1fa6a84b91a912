package pipeline

import (
	"testing"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntryRoundTrip(t *testing.T) {
	for _, e := range Entries() {
		parsed, err := ParseEntry(e.String())
		require.NoError(t, err, e.String())
		assert.Equal(t, e, parsed)
		assert.NotEmpty(t, e.Description())
	}
}

func TestParseEntryUnknown(t *testing.T) {
	_, err := ParseEntry("build:everything")
	require.Error(t, err)
	assert.True(t, kiterrors.IsConfigError(err))
	assert.Contains(t, err.Error(), "build:package")
}

func TestParseEntries(t *testing.T) {
	got, err := ParseEntries([]string{"clean:dist", "build:dist"})
	require.NoError(t, err)
	assert.Equal(t, []Entry{CleanDist, BuildDist}, got)

	_, err = ParseEntries([]string{"styles", "nope"})
	assert.Error(t, err)
}

func TestEntryStringOutOfRange(t *testing.T) {
	assert.Equal(t, "Entry(99)", Entry(99).String())
	assert.Empty(t, Entry(-1).Description())
}
