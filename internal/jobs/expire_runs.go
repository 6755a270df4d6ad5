package jobs

import (
	"context"

	"github.com/vytor/flashrun/internal/logger"
)

// RunExpirer marks runs past their deadline as expired.
type RunExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// ExpireRunsJob sweeps ACTIVE runs whose deadline has passed. Play requests
// already expire runs lazily; the sweep keeps idle runs from lingering.
type ExpireRunsJob struct {
	Runs RunExpirer
}

func (j *ExpireRunsJob) Name() string { return "expire-runs" }

func (j *ExpireRunsJob) Run(ctx context.Context) error {
	n, err := j.Runs.ExpireStale(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContext(ctx).Info("expired %d runs", n)
	}
	return nil
}
