// Package task composes named units of build work into pipelines.
//
// A Task is either a leaf wrapping a function, or a Series or Parallel
// composition of other tasks. Leaves declare the paths they read and write;
// Parallel uses those declarations to reject, at assembly time, branches
// that would write where a sibling reads or writes. Series is the only way
// to order a clean before a compile of the same destination.
package task

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
)

// Func is the work a leaf task performs.
type Func func(ctx context.Context) error

type kind int

const (
	kindLeaf kind = iota
	kindSeries
	kindParallel
)

// Task is a named unit of work or a composition of tasks.
type Task struct {
	name     string
	kind     kind
	fn       Func
	children []*Task
	reads    []string
	writes   []string
	err      error
}

// Option configures a leaf task.
type Option func(*Task)

// Reads declares what the task reads: paths covering their subtree, or
// paths ending in glob segments (see Overlaps).
func Reads(paths ...string) Option {
	return func(t *Task) {
		t.reads = append(t.reads, cleanAll(paths)...)
	}
}

// Writes declares what the task writes or deletes, in the same form as
// Reads.
func Writes(paths ...string) Option {
	return func(t *Task) {
		t.writes = append(t.writes, cleanAll(paths)...)
	}
}

// New creates a leaf task.
func New(name string, fn Func, opts ...Option) *Task {
	t := &Task{name: name, kind: kindLeaf, fn: fn}
	for _, opt := range opts {
		opt(t)
	}
	if fn == nil {
		t.err = kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition,
			fmt.Sprintf("task %q has no function", name))
	}
	return t
}

// Name returns a copy of t carrying displayName. Execution is unchanged.
func Name(displayName string, t *Task) *Task {
	named := *t
	named.name = displayName
	return &named
}

// Series runs tasks one after another. The first failure stops the series.
func Series(tasks ...*Task) *Task {
	return compose(kindSeries, tasks)
}

// Parallel runs tasks concurrently and waits for all of them. Branches
// whose declared paths overlap make the composition invalid.
func Parallel(tasks ...*Task) *Task {
	t := compose(kindParallel, tasks)
	if t.err == nil {
		t.err = checkConflicts(t.children)
	}
	return t
}

func compose(k kind, tasks []*Task) *Task {
	names := make([]string, 0, len(tasks))
	children := make([]*Task, 0, len(tasks))
	for _, child := range tasks {
		if child == nil {
			continue
		}
		children = append(children, child)
		names = append(names, child.name)
	}

	label := "series"
	if k == kindParallel {
		label = "parallel"
	}

	return &Task{
		name:     fmt.Sprintf("%s(%s)", label, strings.Join(names, ", ")),
		kind:     k,
		children: children,
	}
}

// DisplayName returns the task's name.
func (t *Task) DisplayName() string {
	return t.name
}

// Children returns the composed tasks, nil for a leaf.
func (t *Task) Children() []*Task {
	return t.children
}

// IsLeaf reports whether t wraps a function.
func (t *Task) IsLeaf() bool {
	return t.kind == kindLeaf
}

// ReadSet returns every path read by t or its children, sorted.
func (t *Task) ReadSet() []string {
	return t.collect(func(leaf *Task) []string { return leaf.reads })
}

// WriteSet returns every path written by t or its children, sorted.
func (t *Task) WriteSet() []string {
	return t.collect(func(leaf *Task) []string { return leaf.writes })
}

func (t *Task) collect(pick func(*Task) []string) []string {
	seen := make(map[string]struct{})
	var walk func(*Task)
	walk = func(n *Task) {
		for _, p := range pick(n) {
			seen[p] = struct{}{}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t)

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Validate returns the first assembly error found in t's tree.
func (t *Task) Validate() error {
	if t.err != nil {
		return t.err
	}
	for _, c := range t.children {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Leaves returns the leaf tasks of t in declaration order.
func (t *Task) Leaves() []*Task {
	if t.IsLeaf() {
		return []*Task{t}
	}
	var leaves []*Task
	for _, c := range t.children {
		leaves = append(leaves, c.Leaves()...)
	}
	return leaves
}

// checkConflicts rejects parallel branches where one writes a path another
// reads or writes.
func checkConflicts(branches []*Task) error {
	type sets struct{ reads, writes []string }
	all := make([]sets, len(branches))
	for i, b := range branches {
		all[i] = sets{reads: b.ReadSet(), writes: b.WriteSet()}
	}

	for i := range branches {
		for j := range branches {
			if i == j {
				continue
			}
			for _, w := range all[i].writes {
				if j > i {
					if other, ok := overlapsAny(w, all[j].writes); ok {
						return conflictError(branches[i], branches[j], w, other, "writes")
					}
				}
				if other, ok := overlapsAny(w, all[j].reads); ok {
					return conflictError(branches[i], branches[j], w, other, "reads")
				}
			}
		}
	}
	return nil
}

func conflictError(writer, other *Task, path, otherPath, verb string) error {
	return kiterrors.NewConfigError(kiterrors.ErrCodeStageConflict,
		fmt.Sprintf("parallel tasks %q and %q conflict: %q writes %s while %q %s %s",
			writer.name, other.name, writer.name, path, other.name, verb, otherPath))
}

func overlapsAny(p string, set []string) (string, bool) {
	for _, q := range set {
		if Overlaps(p, q) {
			return q, true
		}
	}
	return "", false
}

// Overlaps reports whether two declared paths can name the same file. A
// declaration is a path, covering its subtree, optionally ending in glob
// segments such as "/out/**/*.js". Two globbed declarations under related
// directories are disjoint only when their file name suffixes cannot both
// match one name; anything undecidable counts as overlapping.
func Overlaps(a, b string) bool {
	sa, sb := parseScope(a), parseScope(b)
	if !dirsOverlap(sa.dir, sb.dir) {
		return false
	}
	if len(sb.dir) < len(sa.dir) {
		sa, sb = sb, sa
	}
	if sa.dir != sb.dir && shallow(sa.pattern) {
		// sa names direct children only, so it meets sb solely through
		// the child that contains sb.
		return childMatches(sa, sb.dir)
	}
	if sa.pattern == "" || sb.pattern == "" {
		return true
	}

	ta, okA := nameSuffix(sa.pattern)
	tb, okB := nameSuffix(sb.pattern)
	if !okA || !okB {
		return true
	}
	if ta.literal && tb.literal {
		return ta.suffix == tb.suffix
	}
	return strings.HasSuffix(ta.suffix, tb.suffix) || strings.HasSuffix(tb.suffix, ta.suffix)
}

type scope struct {
	dir     string
	pattern string
}

const globMeta = "*?[{"

// parseScope splits a declaration at its first glob segment.
func parseScope(p string) scope {
	segments := strings.Split(filepath.ToSlash(p), "/")
	for i, seg := range segments {
		if strings.ContainsAny(seg, globMeta) {
			return scope{
				dir:     filepath.FromSlash(strings.Join(segments[:i], "/")),
				pattern: strings.Join(segments[i:], "/"),
			}
		}
	}
	return scope{dir: p}
}

type suffix struct {
	suffix  string
	literal bool
}

// nameSuffix returns the literal text a matching file name must end with.
func nameSuffix(pattern string) (suffix, bool) {
	last := pattern[strings.LastIndex(pattern, "/")+1:]
	star := strings.LastIndex(last, "*")
	if star < 0 {
		if strings.ContainsAny(last, globMeta) {
			return suffix{}, false
		}
		return suffix{suffix: last, literal: true}, true
	}
	tail := last[star+1:]
	if strings.ContainsAny(tail, globMeta) {
		return suffix{}, false
	}
	return suffix{suffix: tail}, true
}

// shallow reports whether pattern only matches names in its own directory.
func shallow(pattern string) bool {
	return pattern != "" && !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**")
}

func childMatches(parent scope, dir string) bool {
	rel, err := filepath.Rel(parent.dir, dir)
	if err != nil {
		return true
	}
	child := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	m, err := assets.NewMatcher(parent.pattern)
	if err != nil {
		return true
	}
	return m.Match(child)
}

func dirsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(a, strings.TrimSuffix(b, sep)+sep) ||
		strings.HasPrefix(b, strings.TrimSuffix(a, sep)+sep)
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			continue
		}
		out = append(out, filepath.Clean(p))
	}
	return out
}
