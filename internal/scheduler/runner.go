package scheduler

import (
	"context"
	"sync"

	"github.com/julianstephens/versecue/internal/logger"
)

// Runner serializes passes over one Engine within a process. A Trigger that
// arrives while a pass is running is coalesced into a single follow-up pass
// that uses the most recent streak.
type Runner struct {
	engine  *Engine
	tracker *CompletionTracker

	// pass is held for the duration of every pass.
	pass sync.Mutex

	mu         sync.Mutex
	running    bool
	pending    bool
	nextStreak int
}

func NewRunner(e *Engine) *Runner {
	return &Runner{engine: e, tracker: NewCompletionTracker(e)}
}

func (r *Runner) Engine() *Engine { return r.engine }

// Trigger runs a recompute in the calling goroutine, then any follow-up
// requested meanwhile. When another goroutine is already running passes the
// request is queued and Trigger returns (nil, nil) immediately.
func (r *Runner) Trigger(ctx context.Context, streak int) (*Result, error) {
	r.mu.Lock()
	if r.running {
		r.pending = true
		r.nextStreak = streak
		r.mu.Unlock()
		logger.Debug("Recompute in progress, coalescing trigger", "streak", streak)
		return nil, nil
	}
	r.running = true
	r.mu.Unlock()

	for {
		r.pass.Lock()
		res, err := r.engine.Recompute(ctx, streak)
		r.pass.Unlock()

		r.mu.Lock()
		if !r.pending {
			r.running = false
			r.mu.Unlock()
			return res, err
		}
		if err != nil {
			logger.Warn("Recompute failed, running queued follow-up", "error", err)
		}
		streak = r.nextStreak
		r.pending = false
		r.mu.Unlock()
	}
}

// Complete handles a daily completion. It waits for any running pass.
func (r *Runner) Complete(ctx context.Context, streak int) error {
	r.pass.Lock()
	defer r.pass.Unlock()
	return r.tracker.OnDailyCompletion(ctx, streak)
}
