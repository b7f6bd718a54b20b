// Package scheduler keeps the platform's queue of local notifications in
// step with the user's preferences, completion history and streak.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/versecue/internal/calendar"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/copycatalog"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/notifier"
	"github.com/julianstephens/versecue/internal/selector"
	"github.com/julianstephens/versecue/internal/storage"
)

// ErrPermissionDenied aborts a recompute before anything is cancelled.
var ErrPermissionDenied = errors.New("notification permission denied")

// Engine recomputes the rolling horizon of notifications. Callers must
// serialize calls to Recompute; see Runner.
type Engine struct {
	repo    *storage.Repository
	os      notifier.Scheduler
	cal     *calendar.Calendar
	now     func() time.Time
	catalog *copycatalog.Catalog
	sel     selector.Selector
	init    *notifier.Initializer
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithCatalog(c *copycatalog.Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithSelector(s selector.Selector) Option {
	return func(e *Engine) { e.sel = s }
}

// WithInitializer replaces the process-wide channel initializer.
func WithInitializer(i *notifier.Initializer) Option {
	return func(e *Engine) { e.init = i }
}

func NewEngine(repo *storage.Repository, os notifier.Scheduler, cal *calendar.Calendar, opts ...Option) *Engine {
	e := &Engine{
		repo:    repo,
		os:      os,
		cal:     cal,
		now:     time.Now,
		catalog: copycatalog.Default,
		sel:     selector.Default,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Calendar() *calendar.Calendar { return e.cal }

func (e *Engine) Repository() *storage.Repository { return e.repo }

func (e *Engine) OS() notifier.Scheduler { return e.os }

func (e *Engine) ensureInitialized(ctx context.Context) error {
	if e.init != nil {
		return e.init.EnsureInitialized(ctx, e.os)
	}
	return notifier.EnsureInitialized(ctx, e.os)
}

// Plan is the set of notifications one pass would submit.
type Plan struct {
	Today          string
	CompletedToday bool
	StreakAtRisk   bool
	InactiveDays   int
	// NudgeDays are the day offsets chosen for the midday nudge.
	NudgeDays     []int
	Notifications []models.ScheduledNotification
	SkippedPast   int
	SkippedBudget int
}

// Result describes a finished recompute.
type Result struct {
	RunID     string
	Plan      Plan
	Cancelled []string
	Scheduled []string
	Failed    []string
}

// Plan computes the notifications for the horizon without touching the
// platform scheduler or the store.
func (e *Engine) Plan(ctx context.Context, streak int) (Plan, error) {
	settings, err := e.repo.LoadSettings()
	if err != nil {
		return Plan{}, err
	}
	last, err := e.repo.LastCompletionDate()
	if err != nil {
		return Plan{}, err
	}
	return e.plan(settings, last, streak, e.now())
}

type planner struct {
	e        *Engine
	settings models.NotificationSettings
	streak   int
	now      time.Time
	budget   *Budget
	out      *Plan
}

// place resolves the fire instant and reserves budget. An elapsed instant
// keeps its slot, so a later pass the same day only ever drops
// notifications and never promotes lower-priority ones.
func (p *planner) place(cat models.Category, date string, at models.TimeOfDay, disambiguator string) {
	fireAt, err := p.e.cal.DateAt(date, at.Hour, at.Minute)
	if err != nil {
		logger.Warn("Skipping notification with unresolvable time", "category", cat, "date", date, "error", err)
		return
	}
	if !p.budget.TryPlace(date) {
		p.out.SkippedBudget++
		logger.Debug("Budget full, skipping notification", "category", cat, "date", date)
		return
	}
	if !fireAt.After(p.now) {
		p.out.SkippedPast++
		return
	}

	id := models.NotificationID(cat, date, disambiguator)
	text := p.e.catalog.TextFor(cat, p.settings.TonePreference, id, p.streak)
	p.out.Notifications = append(p.out.Notifications, models.ScheduledNotification{
		ID:       id,
		Category: cat,
		Title:    text.Title,
		Body:     text.Body,
		FireAt:   fireAt,
		Channel:  cat.Channel(),
	})
}

func (e *Engine) plan(settings models.NotificationSettings, last string, streak int, now time.Time) (Plan, error) {
	if streak < 0 {
		streak = 0
	}
	today := e.cal.Today(now)
	completedToday := last == today
	atRisk := settings.StreakAtRisk(completedToday, streak)

	out := Plan{
		Today:          today,
		CompletedToday: completedToday,
		StreakAtRisk:   atRisk,
		Notifications:  []models.ScheduledNotification{},
	}
	p := &planner{
		e:        e,
		settings: settings,
		streak:   streak,
		now:      now,
		budget:   NewBudget(today, atRisk),
		out:      &out,
	}

	out.NudgeDays = e.sel.PickDays(constants.HorizonDays, settings.MiddayNudgeDaysPerWeek, "midday:"+today)
	nudge := make(map[int]bool, len(out.NudgeDays))
	for _, d := range out.NudgeDays {
		nudge[d] = true
	}

	expiry := settings.StreakExpiryTime
	reminder := settings.DailyReminderTime
	if reminder.Minutes() >= expiry.Minutes() {
		reminder = models.TimeOfDayFromMinutes(expiry.Minutes() - constants.ReminderExpiryLeadMin)
	}

	for offset := 0; offset < constants.HorizonDays; offset++ {
		date, err := calendar.AddDays(today, offset)
		if err != nil {
			return Plan{}, err
		}
		if date == last {
			continue
		}

		if settings.DailyReminderEnabled {
			p.place(models.CategoryDailyReminder, date, reminder, "")
		}
		if settings.MiddayNudgeEnabled && nudge[offset] {
			h, m := e.sel.PickTime("midday:" + date)
			p.place(models.CategoryMiddayNudge, date, models.TimeOfDay{Hour: h, Minute: m}, "")
		}
		if settings.EveningReflectionEnabled {
			p.place(models.CategoryEveningReflection, date, settings.EveningReflectionTime, "")
		}
		if settings.StreakProtectionEnabled && streak > 0 {
			p.place(models.CategoryStreakWarn4h, date, models.TimeOfDayFromMinutes(expiry.Minutes()-constants.StreakWarn4hLeadMin), "")
			p.place(models.CategoryStreakWarn1h, date, models.TimeOfDayFromMinutes(expiry.Minutes()-constants.StreakWarn1hLeadMin), "")
			if streak >= constants.StreakFinalMinStreak {
				p.place(models.CategoryStreakFinal, date, models.TimeOfDayFromMinutes(expiry.Minutes()-constants.StreakFinalLeadMin), "")
			}
		}
	}

	if settings.ReengagementEnabled && last != "" && !completedToday {
		if err := p.reengage(today, last); err != nil {
			return Plan{}, err
		}
	}

	return out, nil
}

func (p *planner) reengage(today, last string) error {
	inactive, err := calendar.DaysBetween(last, today)
	if err != nil {
		return err
	}
	p.out.InactiveDays = inactive
	if p.budget.Exhausted() {
		return nil
	}
	at := models.TimeOfDay{Hour: constants.ReengageHour, Minute: constants.ReengageMinute}

	switch {
	case inactive == constants.ReengageTwoDay:
		p.place(models.CategoryReengage2d, today, at, "")
	case inactive > constants.ReengageTwoDay && inactive <= constants.ReengageFiveDay:
		date, err := calendar.AddDays(last, constants.ReengageFiveDay)
		if err != nil {
			return err
		}
		p.place(models.CategoryReengage5d, date, at, "")
	case inactive >= constants.ReengageWeeklyAfter:
		for k := 1; k <= constants.ReengageWeeklyCount && !p.budget.Exhausted(); k++ {
			date, err := calendar.AddDays(last, constants.ReengageWeeklyAfter*k)
			if err != nil {
				return err
			}
			p.place(models.CategoryReengageWeekly, date, at, "")
		}
	}
	return nil
}

// Recompute cancels everything the engine owns and schedules a fresh
// horizon. A denied permission returns ErrPermissionDenied before any change.
// Once cancellation starts the pass runs to completion even if ctx is done.
func (e *Engine) Recompute(ctx context.Context, streak int) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger.Debug("Recompute started", "run", res.RunID, "streak", streak)

	if err := e.ensureInitialized(ctx); err != nil {
		logger.Warn("Continuing without notification channels", "run", res.RunID, "error", err)
	}

	granted, err := e.os.RequestPermission(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check notification permission: %w", err)
	}
	if !granted {
		logger.Info("Notification permission denied, leaving schedule untouched", "run", res.RunID)
		return nil, ErrPermissionDenied
	}

	ctx = context.WithoutCancel(ctx)

	res.Cancelled = e.cancelOwned(ctx, res.RunID)

	plan, err := e.Plan(ctx, streak)
	if err != nil {
		if serr := e.repo.SaveScheduledIDs(nil); serr != nil {
			logger.Error("Failed to clear scheduled identifiers", "run", res.RunID, "error", serr)
		}
		return nil, fmt.Errorf("failed to plan notifications: %w", err)
	}
	res.Plan = plan

	res.Scheduled = []string{}
	for _, n := range plan.Notifications {
		if !n.FireAt.After(e.now()) {
			continue
		}
		id, err := e.os.Schedule(ctx, n)
		if err != nil {
			logger.Warn("Failed to schedule notification", "run", res.RunID, "id", n.ID, "error", err)
			res.Failed = append(res.Failed, n.ID)
			continue
		}
		res.Scheduled = append(res.Scheduled, id)
	}

	if err := e.repo.SaveScheduledIDs(res.Scheduled); err != nil {
		return res, fmt.Errorf("failed to persist scheduled identifiers: %w", err)
	}
	if err := e.repo.SaveLastStreakCount(streak); err != nil {
		return res, fmt.Errorf("failed to persist streak: %w", err)
	}

	logger.Info("Recompute finished",
		"run", res.RunID,
		"today", plan.Today,
		"scheduled", len(res.Scheduled),
		"cancelled", len(res.Cancelled),
		"failed", len(res.Failed),
		"skipped_past", plan.SkippedPast,
		"skipped_budget", plan.SkippedBudget,
	)
	return res, nil
}

// cancelOwned cancels the persisted identifiers, the legacy single-id keys
// and any listed identifier in an engine-owned category. Failures are
// logged and ignored.
func (e *Engine) cancelOwned(ctx context.Context, runID string) []string {
	owned := make(map[string]struct{})

	ids, err := e.repo.ScheduledIDs()
	if err != nil {
		logger.Warn("Failed to read scheduled identifiers", "run", runID, "error", err)
	}
	for _, id := range ids {
		owned[id] = struct{}{}
	}

	legacy, err := e.repo.TakeLegacyIDs()
	if err != nil {
		logger.Warn("Failed to read legacy identifiers", "run", runID, "error", err)
	}
	for _, id := range legacy {
		owned[id] = struct{}{}
	}

	listed, err := e.os.ListScheduled(ctx)
	if err != nil {
		logger.Warn("Failed to list scheduled notifications", "run", runID, "error", err)
	}
	for _, id := range listed {
		key, err := models.ParseNotificationID(id)
		if err != nil || !key.Category.EngineOwned() {
			continue
		}
		owned[id] = struct{}{}
	}

	sorted := make([]string, 0, len(owned))
	for id := range owned {
		sorted = append(sorted, id)
	}
	sort.Strings(sorted)

	for _, id := range sorted {
		if err := e.os.Cancel(ctx, id); err != nil && !errors.Is(err, notifier.ErrNotScheduled) {
			logger.Debug("Cancel failed, dropping identifier", "run", runID, "id", id, "error", err)
		}
	}
	return sorted
}
