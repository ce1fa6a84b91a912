package pipeline

import (
	"fmt"
	"strings"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
)

// Entry is a runnable pipeline. Command-line names are parsed once into
// an Entry; nothing downstream handles raw names.
type Entry int

const (
	CleanPackage Entry = iota
	CleanDist
	CleanApp
	BuildPackage
	BuildDist
	BuildApp
	WatchApp
	Styles
	Scripts
	Fixtures
)

var entries = []struct {
	name        string
	description string
}{
	CleanPackage: {"clean:package", "Delete package output, keeping manifests and docs"},
	CleanDist:    {"clean:dist", "Delete dist output, keeping manifests and docs"},
	CleanApp:     {"clean:app", "Delete the app's compiled assets"},
	BuildPackage: {"build:package", "Build the npm package: sources, ES modules, UMD bundles, fixtures, macro options"},
	BuildDist:    {"build:dist", "Build versioned, minified release assets"},
	BuildApp:     {"build:app", "Compile the review app's styles and scripts"},
	WatchApp:     {"watch:app", "Rebuild the review app's assets on change"},
	Styles:       {"styles", "Compile stylesheets into the configured target"},
	Scripts:      {"scripts", "Compile scripts into the configured target"},
	Fixtures:     {"fixtures", "Generate fixtures and macro options into the configured target"},
}

// String returns the entry's command-line name.
func (e Entry) String() string {
	if e < 0 || int(e) >= len(entries) {
		return fmt.Sprintf("Entry(%d)", int(e))
	}
	return entries[e].name
}

// Description is shown by the list command.
func (e Entry) Description() string {
	if e < 0 || int(e) >= len(entries) {
		return ""
	}
	return entries[e].description
}

// Entries returns every entry in declaration order.
func Entries() []Entry {
	all := make([]Entry, len(entries))
	for i := range entries {
		all[i] = Entry(i)
	}
	return all
}

// ParseEntry resolves a command-line name.
func ParseEntry(name string) (Entry, error) {
	for i, e := range entries {
		if e.name == name {
			return Entry(i), nil
		}
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return 0, kiterrors.NewConfigError(kiterrors.ErrCodeUnknownEntry,
		fmt.Sprintf("unknown entry %q (available: %s)", name, strings.Join(names, ", ")))
}

// ParseEntries resolves every name, failing on the first unknown one.
func ParseEntries(names []string) ([]Entry, error) {
	out := make([]Entry, 0, len(names))
	for _, name := range names {
		e, err := ParseEntry(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
