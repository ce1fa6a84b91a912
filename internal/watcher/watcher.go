// Package watcher reruns tasks when files matching their bindings change.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/conneroisu/frontkit/internal/task"
	"github.com/fsnotify/fsnotify"
	"github.com/sourcegraph/conc"
)

// DefaultDelay is the quiet period after which a batch of changes runs
// its binding's task.
const DefaultDelay = 100 * time.Millisecond

// ChangeEvent represents a file change event
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
	Size    int64
}

// EventType represents the type of file change
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Binding runs Task when a file beneath Root matching one of Patterns
// changes. Patterns and Ignore are globs relative to Root.
type Binding struct {
	Root     string
	Patterns []string
	Ignore   []string
	Task     *task.Task
}

// Watcher observes the roots of its bindings.
type Watcher struct {
	logger logging.Logger
	delay  time.Duration
	ready  chan struct{}
	once   sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay overrides DefaultDelay.
func WithDelay(delay time.Duration) Option {
	return func(w *Watcher) {
		if delay > 0 {
			w.delay = delay
		}
	}
}

// New creates a watcher.
func New(logger logging.Logger, opts ...Option) *Watcher {
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Watcher{
		logger: logger.WithComponent("watcher"),
		delay:  DefaultDelay,
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Ready is closed once every root is being observed.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

type binding struct {
	Binding
	root      string
	include   *assets.Matcher
	ignore    *assets.Matcher
	debouncer *Debouncer
	runner    *task.Runner
}

// Watch observes the bindings until ctx is cancelled. Task failures are
// logged and watching continues; runs of one binding never overlap.
func (w *Watcher) Watch(ctx context.Context, bindings ...Binding) error {
	bound := make([]*binding, 0, len(bindings))
	for _, b := range bindings {
		if b.Task == nil {
			return kiterrors.NewConfigError(kiterrors.ErrCodeInvalidDefinition, "watch binding has no task")
		}
		if err := b.Task.Validate(); err != nil {
			return err
		}
		include, err := assets.NewMatcher(b.Patterns...)
		if err != nil {
			return err
		}
		ignore, err := assets.NewMatcher(b.Ignore...)
		if err != nil {
			return err
		}
		root, err := filepath.Abs(b.Root)
		if err != nil {
			return kiterrors.WrapConfig(err, kiterrors.ErrCodeInvalidPath, "resolving watch root")
		}
		bound = append(bound, &binding{
			Binding:   b,
			root:      root,
			include:   include,
			ignore:    ignore,
			debouncer: NewDebouncer(w.delay),
			runner:    task.NewRunner(w.logger),
		})
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return kiterrors.Wrap(err, kiterrors.ErrorTypeIO, kiterrors.ErrCodeReadFailed, "starting file watcher")
	}
	defer fsw.Close()

	for _, root := range roots(bound) {
		if err := addRecursive(fsw, root); err != nil {
			return err
		}
	}
	w.once.Do(func() { close(w.ready) })
	w.logger.Info(ctx, "Watching", "roots", roots(bound), "bindings", len(bound), "delay", w.delay)

	var wg conc.WaitGroup
	defer wg.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, b := range bound {
		defer b.debouncer.Stop()
		wg.Go(func() { w.runLoop(ctx, b) })
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Stopped watching")
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, fsw, bound, event)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			// Log error but continue watching
			w.logger.Warn(ctx, err, "File watcher error")
		}
	}
}

func (w *Watcher) runLoop(ctx context.Context, b *binding) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-b.debouncer.Batches():
			paths := make([]string, len(events))
			for i, e := range events {
				paths[i] = e.Path
			}
			w.logger.Debug(ctx, "Changes detected", "task", b.Task.DisplayName(),
				"patterns", b.include.Patterns(), "paths", paths)

			err := b.runner.Run(ctx, b.Task)
			if err != nil && ctx.Err() != nil {
				return
			}

			// Metrics cover one batch.
			metrics := b.runner.Metrics()
			snapshot := metrics.Snapshot()
			metrics.Reset()

			if err != nil {
				w.logger.Error(ctx, err, "Task failed, still watching", "task", b.Task.DisplayName(),
					"failed", snapshot.Failed, "tasks", snapshot.Total)
				continue
			}
			w.logger.Info(ctx, "Rebuilt", "task", b.Task.DisplayName(),
				"tasks", snapshot.Total, "duration", snapshot.TotalDuration)
		}
	}
}

func (w *Watcher) handle(ctx context.Context, fsw *fsnotify.Watcher, bound []*binding, event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	change := ChangeEvent{Path: event.Name}
	switch {
	case event.Op.Has(fsnotify.Create):
		change.Type = EventTypeCreated
	case event.Op.Has(fsnotify.Write):
		change.Type = EventTypeModified
	case event.Op.Has(fsnotify.Remove):
		change.Type = EventTypeDeleted
	case event.Op.Has(fsnotify.Rename):
		change.Type = EventTypeRenamed
	default:
		change.Type = EventTypeModified
	}

	if info, err := os.Stat(event.Name); err == nil {
		change.ModTime = info.ModTime()
		change.Size = info.Size()

		if info.IsDir() {
			if change.Type == EventTypeCreated {
				w.addCreated(ctx, fsw, bound, event.Name)
			}
			return
		}
	}

	w.dispatch(bound, change)
}

// addCreated watches a new directory and reports the files already in it,
// which were created before the directory was observed.
func (w *Watcher) addCreated(ctx context.Context, fsw *fsnotify.Watcher, bound []*binding, dir string) {
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		w.dispatch(bound, ChangeEvent{
			Type:    EventTypeCreated,
			Path:    path,
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn(ctx, err, "Failed to watch new directory", "path", dir)
	}
}

func (w *Watcher) dispatch(bound []*binding, change ChangeEvent) {
	for _, b := range bound {
		rel, ok := relative(b.root, change.Path)
		if !ok {
			continue
		}
		if b.include.Match(rel) && !b.ignore.Match(rel) {
			b.debouncer.Add(change)
		}
	}
}

func relative(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}

// roots returns the binding roots, dropping any nested in another.
func roots(bound []*binding) []string {
	all := make([]string, 0, len(bound))
	for _, b := range bound {
		all = append(all, b.root)
	}
	sort.Strings(all)

	var out []string
	for _, r := range all {
		if len(out) > 0 {
			if _, nested := relative(out[len(out)-1], r); nested || out[len(out)-1] == r {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "watching directory", root)
	}
	return nil
}
