package scheduler

import (
	"context"
	"errors"

	"github.com/julianstephens/versecue/internal/logger"
)

// RecomputeSchedule reports a recompute as a plain success flag for callers
// written against the original boolean contract.
func RecomputeSchedule(ctx context.Context, e *Engine, streak int) bool {
	if _, err := e.Recompute(ctx, streak); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			logger.Info("Schedule not recomputed: permission denied")
		} else {
			logger.Warn("Schedule recompute failed", "error", err)
		}
		return false
	}
	return true
}

// OnDailyCompletion swallows errors for callers that cannot act on them.
func OnDailyCompletion(ctx context.Context, t *CompletionTracker, streak int) {
	if err := t.OnDailyCompletion(ctx, streak); err != nil {
		logger.Warn("Daily completion handling failed", "error", err)
	}
}
