package store

import (
	"context"

	"sentinel/internal/platform/logger"
)

// WithRun attaches a pipeline run id, the same one request logs carry
func WithRun(ctx context.Context, runID string) context.Context {
	return logger.WithRun(ctx, runID)
}

// RunID returns the run id on ctx and whether one was set
func RunID(ctx context.Context) (string, bool) {
	id := logger.RunID(ctx)
	return id, id != ""
}
