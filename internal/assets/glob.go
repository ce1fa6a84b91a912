package assets

import (
	"fmt"
	"path/filepath"
	"strings"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/gobwas/glob"
)

// Matcher matches slash-separated relative paths against one or more glob
// patterns. `*` stays within a path segment, `**` crosses segments and a
// `**/` prefix also matches zero directories.
type Matcher struct {
	patterns []string
	globs    []glob.Glob
}

// NewMatcher compiles patterns. An empty pattern list matches nothing.
func NewMatcher(patterns ...string) (*Matcher, error) {
	m := &Matcher{patterns: patterns}

	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		if pattern == "" {
			return nil, kiterrors.NewConfigError(kiterrors.ErrCodeInvalidGlob, "empty glob pattern")
		}
		for _, variant := range expandDoubleStar(pattern) {
			g, err := glob.Compile(variant, '/')
			if err != nil {
				return nil, kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidGlob,
					fmt.Sprintf("invalid glob pattern %q", pattern))
			}
			m.globs = append(m.globs, g)
		}
	}

	return m, nil
}

// Match reports whether rel matches any pattern.
func (m *Matcher) Match(rel string) bool {
	if m == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, g := range m.globs {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}

// expandDoubleStar returns every variant of pattern where each `**/`
// segment is either kept or dropped, so `a/**/b` also matches `a/b`.
func expandDoubleStar(pattern string) []string {
	idx := strings.Index(pattern, "**/")
	if idx < 0 || (idx > 0 && pattern[idx-1] != '/') {
		return []string{pattern}
	}

	head, tail := pattern[:idx], pattern[idx+3:]
	var variants []string
	for _, rest := range expandDoubleStar(tail) {
		variants = append(variants, head+"**/"+rest, head+rest)
	}
	return variants
}
