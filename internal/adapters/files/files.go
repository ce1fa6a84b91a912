// Package files implements the copy and clean adapters.
package files

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/conneroisu/frontkit/internal/adapters"
	"github.com/conneroisu/frontkit/internal/assets"
	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/spf13/afero"
)

// Adapter copies and cleans files.
type Adapter struct {
	logger logging.Logger
}

// New creates a files adapter.
func New(logger logging.Logger) *Adapter {
	return &Adapter{logger: adapters.Logger(logger, "files")}
}

// Copy copies every file under opts.SrcPath matching pattern to
// opts.DestPath, keeping its permission bits.
func (a *Adapter) Copy(ctx context.Context, pattern string, opts assets.Options) error {
	matches, err := adapters.Resolve(ctx, a.logger, pattern, opts)
	if err != nil {
		return err
	}

	fsys := opts.FS()
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := opts.Output(m.Rel, "")
		if err != nil {
			return err
		}
		info, err := fsys.Stat(m.Path)
		if err != nil {
			return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading source", m.Path)
		}
		data, err := afero.ReadFile(fsys, m.Path)
		if err != nil {
			return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading source", m.Path)
		}
		if err := assets.WriteFile(fsys, out, data, info.Mode().Perm()); err != nil {
			return err
		}
	}

	a.logger.Info(ctx, "Copied files", "pattern", pattern, "count", len(matches), "dest", opts.DestPath)
	return nil
}

// Clean deletes everything under opts.DestPath matching pattern, a matched
// directory standing for its whole subtree. Paths matching opts.Ignore are
// filtered out before anything is deleted; a matched directory holding an
// ignored path loses everything else and keeps the directories leading to
// the ignored paths.
func (a *Adapter) Clean(ctx context.Context, pattern string, opts assets.Options) error {
	include, err := assets.NewMatcher(pattern)
	if err != nil {
		return err
	}
	ignore, err := assets.NewMatcher(opts.Ignore...)
	if err != nil {
		return err
	}

	fsys := opts.FS()
	root := opts.DestPath
	if exists, err := afero.DirExists(fsys, root); err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "reading destination", root)
	} else if !exists {
		a.logger.Debug(ctx, "Nothing to clean", "dest", root)
		return nil
	}

	c := &cleaner{fs: fsys, root: root, include: include, ignore: ignore}
	if err := c.clean(ctx, "", false); err != nil {
		return err
	}

	a.logger.Info(ctx, "Cleaned", "pattern", pattern, "dest", root, "removed", c.removed)
	return nil
}

var errStopWalk = errors.New("stop walk")

type cleaner struct {
	fs      afero.Fs
	root    string
	include *assets.Matcher
	ignore  *assets.Matcher
	removed int
}

// clean removes the matched entries beneath rel. Once a directory
// matches, everything under it counts as matched.
func (c *cleaner) clean(ctx context.Context, rel string, inherited bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(c.root, filepath.FromSlash(rel))
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "listing directory", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		childRel := entry.Name()
		if rel != "" {
			childRel = rel + "/" + entry.Name()
		}
		if c.ignore.Match(childRel) {
			continue
		}
		child := filepath.Join(dir, entry.Name())
		matched := inherited || c.include.Match(childRel)

		if !entry.IsDir() {
			if matched {
				if err := c.remove(child, c.fs.Remove); err != nil {
					return err
				}
			}
			continue
		}

		if matched {
			protected, err := c.holdsIgnored(childRel)
			if err != nil {
				return err
			}
			if !protected {
				if err := c.remove(child, c.fs.RemoveAll); err != nil {
					return err
				}
				continue
			}
		}

		if err := c.clean(ctx, childRel, matched); err != nil {
			return err
		}
		if matched {
			if err := c.removeIfEmpty(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// holdsIgnored reports whether anything beneath rel matches the ignore list.
func (c *cleaner) holdsIgnored(rel string) (bool, error) {
	found := false
	dir := filepath.Join(c.root, filepath.FromSlash(rel))
	err := afero.Walk(c.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		sub, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		if c.ignore.Match(filepath.ToSlash(sub)) {
			found = true
			return errStopWalk
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopWalk) {
		return false, kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "walking directory", dir)
	}
	return found, nil
}

func (c *cleaner) removeIfEmpty(dir string) error {
	entries, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeReadFailed, "listing directory", dir)
	}
	if len(entries) > 0 {
		return nil
	}
	return c.remove(dir, c.fs.Remove)
}

func (c *cleaner) remove(path string, rm func(string) error) error {
	if err := rm(path); err != nil {
		return kiterrors.WrapIO(err, kiterrors.ErrCodeRemoveFailed, "removing", path)
	}
	c.removed++
	return nil
}
