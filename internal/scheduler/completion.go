package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/notifier"
)

// CompletionTracker handles the daily completion event.
type CompletionTracker struct {
	e *Engine
}

func NewCompletionTracker(e *Engine) *CompletionTracker {
	return &CompletionTracker{e: e}
}

// IsMilestone reports whether streak earns a celebration.
func IsMilestone(streak int) bool {
	return slices.Contains(constants.MilestoneStreaks, streak)
}

// OnDailyCompletion records today as completed, cancels the notifications
// that completion makes moot, celebrates milestone streaks and recomputes
// the horizon.
func (t *CompletionTracker) OnDailyCompletion(ctx context.Context, streak int) error {
	e := t.e
	now := e.now()
	today := e.cal.Today(now)

	previous, err := e.repo.LastCompletionDate()
	if err != nil {
		return fmt.Errorf("failed to read last completion: %w", err)
	}
	repeat := previous == today

	if err := e.repo.SetLastCompletionDate(today); err != nil {
		return fmt.Errorf("failed to record completion: %w", err)
	}

	cancelled := t.cancelSameDay(ctx, today)
	logger.Info("Daily completion recorded", "date", today, "streak", streak, "cancelled", cancelled, "repeat", repeat)

	// A milestone is celebrated once per day.
	if IsMilestone(streak) && !repeat {
		if err := t.celebrate(ctx, today, streak); err != nil {
			logger.Warn("Milestone notification not scheduled", "streak", streak, "error", err)
		}
	}

	_, err = e.Recompute(ctx, streak)
	return err
}

// cancelSameDay cancels today's same-day-sensitive notifications and every
// re-engagement notification regardless of date.
func (t *CompletionTracker) cancelSameDay(ctx context.Context, today string) int {
	listed, err := t.e.os.ListScheduled(ctx)
	if err != nil {
		logger.Warn("Failed to list scheduled notifications", "error", err)
		return 0
	}

	cancelled := 0
	for _, id := range listed {
		key, err := models.ParseNotificationID(id)
		if err != nil || !key.Category.SameDaySensitive() {
			continue
		}
		if key.Date != today && !key.Category.IsReengagement() {
			continue
		}
		if err := t.e.os.Cancel(ctx, id); err != nil && !errors.Is(err, notifier.ErrNotScheduled) {
			logger.Debug("Cancel failed", "id", id, "error", err)
			continue
		}
		cancelled++
	}
	return cancelled
}

func (t *CompletionTracker) celebrate(ctx context.Context, today string, streak int) error {
	e := t.e
	granted, err := e.os.RequestPermission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrPermissionDenied
	}

	settings, err := e.repo.LoadSettings()
	if err != nil {
		return err
	}

	id := models.NotificationID(models.CategoryMilestone, today, strconv.Itoa(streak))
	text := e.catalog.TextFor(models.CategoryMilestone, settings.TonePreference, id, streak)
	_, err = e.os.Schedule(ctx, models.ScheduledNotification{
		ID:       id,
		Category: models.CategoryMilestone,
		Title:    text.Title,
		Body:     text.Body,
		FireAt:   e.now().Add(constants.MilestoneDelay),
		Channel:  models.CategoryMilestone.Channel(),
	})
	return err
}
