// Package adapters holds the plumbing shared by the compilation adapters in
// its subpackages (files, scripts, styles, configs, components). Each
// adapter resolves a glob against a source root, runs one transformation per
// match and writes beneath a destination root.
package adapters

import (
	"context"

	"github.com/conneroisu/frontkit/internal/assets"
	"github.com/conneroisu/frontkit/internal/logging"
)

// Resolve returns the files under opts.SrcPath matching pattern. A missing
// source root is not an error: it yields no matches and a warning.
func Resolve(ctx context.Context, logger logging.Logger, pattern string, opts assets.Options) ([]assets.Match, error) {
	return ResolveIn(ctx, logger, opts.SrcPath, pattern, opts)
}

// ResolveIn is Resolve against an arbitrary root beneath opts.SrcPath.
func ResolveIn(ctx context.Context, logger logging.Logger, root, pattern string, opts assets.Options) ([]assets.Match, error) {
	matches, ok, err := assets.Resolve(opts.FS(), root, pattern, opts.Ignore)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Warn(ctx, nil, "Root does not exist, nothing matched", "root", root, "pattern", pattern)
		return nil, nil
	}
	logger.Debug(ctx, "Resolved sources", "root", root, "pattern", pattern, "matches", len(matches))
	return matches, nil
}

// Logger returns logger scoped to an adapter, discarding when nil.
func Logger(logger logging.Logger, component string) logging.Logger {
	if logger == nil {
		return logging.Discard().WithComponent(component)
	}
	return logger.WithComponent(component)
}
