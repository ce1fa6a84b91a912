package task

import (
	"context"
	"time"

	kiterrors "github.com/conneroisu/frontkit/internal/errors"
	"github.com/conneroisu/frontkit/internal/logging"
	"github.com/sourcegraph/conc/pool"
)

// Runner executes pipelines, logging every leaf under the `task` field and
// recording its result.
type Runner struct {
	logger  logging.Logger
	metrics *Metrics
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{
		logger:  logger.WithComponent("runner"),
		metrics: NewMetrics(),
	}
}

// Metrics returns the results recorded so far.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run validates t and executes it. An invalid pipeline runs nothing.
func (r *Runner) Run(ctx context.Context, t *Task) error {
	if err := t.Validate(); err != nil {
		r.logger.Error(ctx, err, "Pipeline rejected", "task", t.name)
		return err
	}
	return r.run(ctx, t)
}

func (r *Runner) run(ctx context.Context, t *Task) error {
	switch t.kind {
	case kindSeries:
		for _, child := range t.children {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.run(ctx, child); err != nil {
				return err
			}
		}
		return nil

	case kindParallel:
		// Siblings are not cancelled when one fails; Wait joins every error.
		p := pool.New().WithErrors()
		for _, child := range t.children {
			p.Go(func() error {
				return r.run(ctx, child)
			})
		}
		return p.Wait()

	default:
		return r.runLeaf(ctx, t)
	}
}

func (r *Runner) runLeaf(ctx context.Context, t *Task) error {
	logger := r.logger.With("task", t.name)
	logger.Debug(ctx, "Starting")

	start := time.Now()
	err := t.fn(ctx)
	duration := time.Since(start)

	r.metrics.Record(Result{Task: t.name, Duration: duration, Err: err})

	if err != nil {
		err = kiterrors.WrapTask(err, t.name)
		logger.Error(ctx, err, "Failed", "duration", duration.String())
		return err
	}

	logger.Info(ctx, "Finished", "duration", duration.String())
	return nil
}
