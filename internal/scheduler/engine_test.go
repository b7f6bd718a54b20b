package scheduler

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/julianstephens/versecue/internal/calendar"
	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/models"
	"github.com/julianstephens/versecue/internal/notifier"
	"github.com/julianstephens/versecue/internal/storage"
)

const testZone = "America/New_York"

type fixture struct {
	engine *Engine
	os     *notifier.Memory
	store  *storage.MemoryStore
	repo   *storage.Repository
	cal    *calendar.Calendar
	now    time.Time
}

func (f *fixture) setNow(t time.Time) { f.now = t }

func at(t *testing.T, date string, hour, minute int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(testZone)
	if err != nil {
		t.Fatal(err)
	}
	d, err := time.ParseInLocation(constants.DateFormat, date, loc)
	if err != nil {
		t.Fatal(err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
}

func newFixture(t *testing.T, now time.Time, settings models.NotificationSettings, last string) *fixture {
	t.Helper()
	cal, err := calendar.New(testZone)
	if err != nil {
		t.Fatal(err)
	}
	store := storage.NewMemoryStore()
	repo := storage.NewRepository(store)
	if err := repo.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	if last != "" {
		if err := repo.SetLastCompletionDate(last); err != nil {
			t.Fatal(err)
		}
	}

	f := &fixture{os: notifier.NewMemory(), store: store, repo: repo, cal: cal, now: now}
	f.engine = NewEngine(repo, f.os, cal,
		WithClock(func() time.Time { return f.now }),
		WithInitializer(&notifier.Initializer{}),
	)
	return f
}

// only returns default settings with every family disabled.
func only() models.NotificationSettings {
	s := models.DefaultNotificationSettings()
	s.DailyReminderEnabled = false
	s.MiddayNudgeEnabled = false
	s.EveningReflectionEnabled = false
	s.StreakProtectionEnabled = false
	s.ReengagementEnabled = false
	return s
}

func (f *fixture) localTime(n models.ScheduledNotification) string {
	h, m := f.cal.HourMinute(n.FireAt)
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (f *fixture) pendingIDs(t *testing.T) []string {
	t.Helper()
	ids, err := f.os.ListScheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return ids
}

func TestRecompute_StreakAtRiskWarnings(t *testing.T) {
	settings := only()
	settings.StreakProtectionEnabled = true
	settings.StreakExpiryTime = models.TimeOfDay{Hour: 23, Minute: 59}

	f := newFixture(t, at(t, "2024-05-01", 9, 0), settings, "")
	res, err := f.engine.Recompute(context.Background(), 6)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if !res.Plan.StreakAtRisk {
		t.Fatal("expected streak to be at risk")
	}

	want := map[string]string{
		"streakWarn4h-2024-05-01": "19:59",
		"streakWarn1h-2024-05-01": "22:59",
		"streakFinal-2024-05-01":  "23:44",
	}
	for id, hhmm := range want {
		n, ok := f.os.Get(id)
		if !ok {
			t.Errorf("%s not scheduled", id)
			continue
		}
		if got := f.localTime(n); got != hhmm {
			t.Errorf("%s fires at %s, want %s", id, got, hhmm)
		}
		if f.cal.DateString(n.FireAt) != "2024-05-01" {
			t.Errorf("%s fires on %s", id, f.cal.DateString(n.FireAt))
		}
		if n.Channel != models.ChannelStreak {
			t.Errorf("%s channel = %s", id, n.Channel)
		}
	}

	final, _ := f.os.Get("streakFinal-2024-05-01")
	if !strings.Contains(final.Body, "6") {
		t.Errorf("final warning body %q does not include the streak", final.Body)
	}
}

func TestRecompute_ReminderShiftedBeforeExpiry(t *testing.T) {
	settings := only()
	settings.DailyReminderEnabled = true
	settings.DailyReminderTime = models.TimeOfDay{Hour: 23, Minute: 30}
	settings.StreakExpiryTime = models.TimeOfDay{Hour: 23, Minute: 0}

	f := newFixture(t, at(t, "2024-05-01", 9, 0), settings, "")
	if _, err := f.engine.Recompute(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	n, ok := f.os.Get("dailyReminder-2024-05-01")
	if !ok {
		t.Fatal("daily reminder not scheduled")
	}
	if got := f.localTime(n); got != "21:00" {
		t.Errorf("reminder fires at %s, want 21:00", got)
	}
}

func TestRecompute_ReminderShiftClampsToMidnight(t *testing.T) {
	settings := only()
	settings.DailyReminderEnabled = true
	settings.DailyReminderTime = models.TimeOfDay{Hour: 8, Minute: 0}
	settings.StreakExpiryTime = models.TimeOfDay{Hour: 1, Minute: 0}

	f := newFixture(t, at(t, "2024-05-01", 0, 0), settings, "")
	plan, err := f.engine.Plan(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range plan.Notifications {
		if got := f.localTime(n); got != "00:00" {
			t.Errorf("%s fires at %s, want 00:00", n.ID, got)
		}
	}
}

func TestRecompute_ReengagementAtTwoDays(t *testing.T) {
	settings := only()
	settings.ReengagementEnabled = true

	f := newFixture(t, at(t, "2024-05-01", 9, 0), settings, "2024-04-29")
	if _, err := f.engine.Recompute(context.Background(), 0); err != nil {
		t.Fatal(err)
	}

	ids := f.pendingIDs(t)
	if !reflect.DeepEqual(ids, []string{"reengage2d-2024-05-01"}) {
		t.Fatalf("scheduled %v, want only reengage2d-2024-05-01", ids)
	}
	n, _ := f.os.Get("reengage2d-2024-05-01")
	if got := f.localTime(n); got != "18:00" {
		t.Errorf("re-engagement fires at %s, want 18:00", got)
	}
}

func TestRecompute_ReengagementLadder(t *testing.T) {
	tests := []struct {
		name string
		last string
		want []string
	}{
		{"one day", "2024-04-30", []string{}},
		{"three days", "2024-04-28", []string{"reengage5d-2024-05-03"}},
		{"five days", "2024-04-26", []string{"reengage5d-2024-05-01"}},
		{"six days", "2024-04-25", []string{}},
		{"seven days", "2024-04-24", []string{
			"reengageWeekly-2024-05-01", "reengageWeekly-2024-05-08",
			"reengageWeekly-2024-05-15", "reengageWeekly-2024-05-22",
		}},
		{"eleven days skips the past week", "2024-04-20", []string{
			"reengageWeekly-2024-05-04", "reengageWeekly-2024-05-11", "reengageWeekly-2024-05-18",
		}},
		{"long gone", "2024-01-01", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := only()
			settings.ReengagementEnabled = true
			f := newFixture(t, at(t, "2024-05-01", 9, 0), settings, tt.last)

			if _, err := f.engine.Recompute(context.Background(), 0); err != nil {
				t.Fatal(err)
			}
			if got := f.pendingIDs(t); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("scheduled %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecompute_NoReengagementWhenCompletedToday(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "2024-05-01")
	res, err := f.engine.Recompute(context.Background(), 4)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range res.Scheduled {
		key, _ := models.ParseNotificationID(id)
		if key.Date == "2024-05-01" {
			t.Errorf("completed day still has %s", id)
		}
		if key.Category.IsReengagement() {
			t.Errorf("unexpected re-engagement %s", id)
		}
	}
}

func TestOnDailyCompletion_CancelsSameDayUrgency(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "2024-04-28")
	ctx := context.Background()

	if _, err := f.engine.Recompute(ctx, 6); err != nil {
		t.Fatal(err)
	}
	before := f.pendingIDs(t)
	if len(before) == 0 {
		t.Fatal("expected notifications before completion")
	}

	tracker := NewCompletionTracker(f.engine)
	if err := tracker.OnDailyCompletion(ctx, 7); err != nil {
		t.Fatalf("OnDailyCompletion failed: %v", err)
	}

	if d, _ := f.repo.LastCompletionDate(); d != "2024-05-01" {
		t.Errorf("last completion = %q", d)
	}

	milestone := false
	for _, id := range f.pendingIDs(t) {
		key, err := models.ParseNotificationID(id)
		if err != nil {
			t.Fatalf("unexpected id %s", id)
		}
		if key.Category == models.CategoryMilestone {
			milestone = true
			continue
		}
		if key.Category.IsReengagement() {
			t.Errorf("re-engagement %s survived completion", id)
		}
		if key.Date == "2024-05-01" {
			t.Errorf("%s still scheduled for the completed day", id)
		}
	}
	if !milestone {
		t.Error("expected a milestone for a 7-day streak")
	}

	n, ok := f.os.Get("milestone-2024-05-01-7")
	if !ok {
		t.Fatal("milestone id mismatch")
	}
	if !n.FireAt.Equal(f.now.Add(constants.MilestoneDelay)) {
		t.Errorf("milestone fires at %v, want %v", n.FireAt, f.now.Add(constants.MilestoneDelay))
	}
	if !strings.Contains(n.Title+n.Body, "7") {
		t.Errorf("milestone copy %+v lacks the streak", n)
	}
}

func TestOnDailyCompletion_NoMilestoneForOrdinaryStreak(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	if err := NewCompletionTracker(f.engine).OnDailyCompletion(context.Background(), 8); err != nil {
		t.Fatal(err)
	}
	for _, id := range f.pendingIDs(t) {
		if strings.HasPrefix(id, string(models.CategoryMilestone)) {
			t.Errorf("unexpected milestone %s", id)
		}
	}
}

func TestOnDailyCompletion_MilestoneOncePerDay(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	ctx := context.Background()
	tracker := NewCompletionTracker(f.engine)

	if err := tracker.OnDailyCompletion(ctx, 7); err != nil {
		t.Fatal(err)
	}
	// Delivered: the platform no longer lists it.
	if err := f.os.Cancel(ctx, "milestone-2024-05-01-7"); err != nil {
		t.Fatal(err)
	}
	f.os.ResetCalls()

	f.setNow(at(t, "2024-05-01", 9, 30))
	if err := tracker.OnDailyCompletion(ctx, 7); err != nil {
		t.Fatal(err)
	}
	for _, id := range f.os.ScheduleCalls() {
		if id == "milestone-2024-05-01-7" {
			t.Error("milestone scheduled twice on the same day")
		}
	}
	if d, _ := f.repo.LastCompletionDate(); d != "2024-05-01" {
		t.Errorf("last completion = %q", d)
	}
}

func TestRecompute_ReengagementSkippedWhenBudgetExhausted(t *testing.T) {
	settings := only()
	settings.DailyReminderEnabled = true
	settings.EveningReflectionEnabled = true
	settings.ReengagementEnabled = true

	// Seven days of reminder + evening fill the weekly budget before
	// re-engagement gets a turn.
	f := newFixture(t, at(t, "2024-05-01", 0, 30), settings, "2024-04-24")
	plan, err := f.engine.Plan(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Notifications) != constants.MaxNotificationsPerWeek {
		t.Fatalf("planned %d, want %d", len(plan.Notifications), constants.MaxNotificationsPerWeek)
	}
	for _, n := range plan.Notifications {
		if n.Category.IsReengagement() {
			t.Errorf("re-engagement %s planned with no budget left", n.ID)
		}
	}
	if plan.InactiveDays != 7 {
		t.Errorf("inactive days = %d, want 7", plan.InactiveDays)
	}
}

func TestRecompute_MilestoneSurvivesRecompute(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	f.os.Put(models.ScheduledNotification{ID: "milestone-2024-05-01-3", Category: models.CategoryMilestone, FireAt: f.now.Add(time.Minute)})

	if _, err := f.engine.Recompute(context.Background(), 3); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.os.Get("milestone-2024-05-01-3"); !ok {
		t.Error("recompute cancelled a milestone")
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "2024-04-27")
	ctx := context.Background()

	first, err := f.engine.Recompute(ctx, 6)
	if err != nil {
		t.Fatal(err)
	}
	firstPending := f.os.Pending()

	second, err := f.engine.Recompute(ctx, 6)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Scheduled, second.Scheduled) {
		t.Errorf("scheduled sets differ:\n%v\n%v", first.Scheduled, second.Scheduled)
	}
	if !reflect.DeepEqual(firstPending, f.os.Pending()) {
		t.Error("pending notifications differ between passes")
	}
	persisted, _ := f.repo.ScheduledIDs()
	if !reflect.DeepEqual(persisted, second.Scheduled) {
		t.Errorf("persisted %v, want %v", persisted, second.Scheduled)
	}
	if first.RunID == second.RunID {
		t.Error("run ids should differ")
	}
}

func TestRecompute_IdempotentAsTimePasses(t *testing.T) {
	nudgeOff := models.DefaultNotificationSettings()
	nudgeOff.MiddayNudgeEnabled = false

	tests := []struct {
		name     string
		settings models.NotificationSettings
		last     string
		from, to [2]int
	}{
		{"morning to evening", nudgeOff, "", [2]int{7, 0}, [2]int{21, 0}},
		{"morning to late night", nudgeOff, "", [2]int{9, 0}, [2]int{23, 50}},
		{"defaults with nudges", models.DefaultNotificationSettings(), "", [2]int{0, 30}, [2]int{15, 0}},
		{"lapsed user", models.DefaultNotificationSettings(), "2024-04-20", [2]int{9, 0}, [2]int{19, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, at(t, "2024-05-01", tt.from[0], tt.from[1]), tt.settings, tt.last)
			ctx := context.Background()

			first, err := f.engine.Recompute(ctx, 6)
			if err != nil {
				t.Fatal(err)
			}
			earlier := make(map[string]bool, len(first.Scheduled))
			for _, id := range first.Scheduled {
				earlier[id] = true
			}

			f.setNow(at(t, "2024-05-01", tt.to[0], tt.to[1]))
			second, err := f.engine.Recompute(ctx, 6)
			if err != nil {
				t.Fatal(err)
			}

			for _, id := range second.Scheduled {
				if !earlier[id] {
					t.Errorf("later pass created %s, absent from the earlier pass %v", id, first.Scheduled)
				}
				n, _ := f.os.Get(id)
				if !n.FireAt.After(f.now) {
					t.Errorf("%s is in the past", id)
				}
			}
		})
	}
}

func TestRecompute_PastTimesNeverSubmitted(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 22, 0), models.DefaultNotificationSettings(), "")
	res, err := f.engine.Recompute(context.Background(), 6)
	if err != nil {
		t.Fatal(err)
	}

	if res.Plan.SkippedPast < 3 {
		t.Errorf("expected reminder, evening and 4h warning to be skipped as past, got %d", res.Plan.SkippedPast)
	}
	for _, id := range f.os.ScheduleCalls() {
		n, _ := f.os.Get(id)
		if !n.FireAt.After(f.now) {
			t.Errorf("%s submitted with past fire time %v", id, n.FireAt)
		}
	}
	// Elapsed notifications keep today's slots, so the late warnings are not
	// promoted into them.
	for _, id := range res.Scheduled {
		if strings.HasSuffix(id, "2024-05-01") {
			t.Errorf("%s took a slot already spent on an elapsed notification", id)
		}
	}
	if _, ok := f.os.Get("dailyReminder-2024-05-02"); !ok {
		t.Error("expected tomorrow's reminder to be scheduled")
	}
}

func TestRecompute_CapInvariants(t *testing.T) {
	nows := []struct{ hour, minute int }{{0, 30}, {9, 0}, {21, 0}}
	lasts := []string{"", "2024-05-01", "2024-04-29", "2024-04-28", "2024-04-20"}
	streaks := []int{0, 3, 6}

	for mask := 0; mask < 32; mask++ {
		settings := only()
		settings.DailyReminderEnabled = mask&1 != 0
		settings.MiddayNudgeEnabled = mask&2 != 0
		settings.EveningReflectionEnabled = mask&4 != 0
		settings.StreakProtectionEnabled = mask&8 != 0
		settings.ReengagementEnabled = mask&16 != 0
		settings.MiddayNudgeDaysPerWeek = mask % 8

		for _, nw := range nows {
			for _, last := range lasts {
				f := newFixture(t, at(t, "2024-05-01", nw.hour, nw.minute), settings, last)
				for _, streak := range streaks {
					plan, err := f.engine.Plan(context.Background(), streak)
					if err != nil {
						t.Fatal(err)
					}

					perDay := map[string]int{}
					for _, n := range plan.Notifications {
						key, err := models.ParseNotificationID(n.ID)
						if err != nil {
							t.Fatalf("bad id %s", n.ID)
						}
						perDay[key.Date]++
						if !n.FireAt.After(f.now) {
							t.Errorf("past notification %s planned", n.ID)
						}
					}

					if len(plan.Notifications) > constants.MaxNotificationsPerWeek {
						t.Errorf("mask=%d last=%q streak=%d: %d notifications", mask, last, streak, len(plan.Notifications))
					}
					for date, count := range perDay {
						limit := constants.MaxNotificationsPerDay
						if date == plan.Today && plan.StreakAtRisk {
							limit = constants.MaxNotificationsPerDayAtRisk
						}
						if count > limit {
							t.Errorf("mask=%d last=%q streak=%d: %s has %d (limit %d)", mask, last, streak, date, count, limit)
						}
					}

					again, _ := f.engine.Plan(context.Background(), streak)
					if !reflect.DeepEqual(plan, again) {
						t.Errorf("mask=%d last=%q streak=%d: plan not deterministic", mask, last, streak)
					}
				}
			}
		}
	}
}

func TestRecompute_CategoryPriority(t *testing.T) {
	// Everything on, streak at risk: today's three slots go to the reminder,
	// the evening reflection and the first streak warning, in that order.
	settings := models.DefaultNotificationSettings()
	settings.MiddayNudgeEnabled = false

	f := newFixture(t, at(t, "2024-05-01", 0, 30), settings, "")
	plan, err := f.engine.Plan(context.Background(), 6)
	if err != nil {
		t.Fatal(err)
	}

	var today []string
	for _, n := range plan.Notifications {
		if strings.HasSuffix(n.ID, "2024-05-01") {
			today = append(today, n.ID)
		}
	}
	want := []string{"dailyReminder-2024-05-01", "eveningReflection-2024-05-01", "streakWarn4h-2024-05-01"}
	if !reflect.DeepEqual(today, want) {
		t.Errorf("today = %v, want %v", today, want)
	}
}

func TestRecompute_MiddayNudgeWindow(t *testing.T) {
	settings := only()
	settings.MiddayNudgeEnabled = true
	settings.MiddayNudgeDaysPerWeek = 7

	f := newFixture(t, at(t, "2024-05-01", 0, 30), settings, "")
	plan, err := f.engine.Plan(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Notifications) != 7 {
		t.Fatalf("expected a nudge every day, got %d", len(plan.Notifications))
	}
	for _, n := range plan.Notifications {
		h, _ := f.cal.HourMinute(n.FireAt)
		if h < 12 || h >= 14 {
			t.Errorf("%s at hour %d outside the midday window", n.ID, h)
		}
	}

	settings.MiddayNudgeDaysPerWeek = 3
	f = newFixture(t, at(t, "2024-05-01", 0, 30), settings, "")
	plan, _ = f.engine.Plan(context.Background(), 0)
	if len(plan.NudgeDays) != 3 || len(plan.Notifications) != 3 {
		t.Errorf("expected 3 nudge days, got %v and %d notifications", plan.NudgeDays, len(plan.Notifications))
	}
}

func TestRecompute_AcrossDSTTransition(t *testing.T) {
	settings := only()
	settings.DailyReminderEnabled = true

	for _, start := range []string{"2024-03-08", "2024-10-31"} {
		f := newFixture(t, at(t, start, 0, 30), settings, "")
		plan, err := f.engine.Plan(context.Background(), 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(plan.Notifications) != constants.HorizonDays {
			t.Fatalf("%s: expected %d reminders, got %d", start, constants.HorizonDays, len(plan.Notifications))
		}
		for _, n := range plan.Notifications {
			key, _ := models.ParseNotificationID(n.ID)
			if f.cal.DateString(n.FireAt) != key.Date || f.localTime(n) != "08:00" {
				t.Errorf("%s resolves to %s %s", n.ID, f.cal.DateString(n.FireAt), f.localTime(n))
			}
		}
	}
}

func TestRecompute_PermissionDeniedLeavesScheduleUntouched(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	existing := models.ScheduledNotification{ID: "eveningReflection-2024-05-01", Category: models.CategoryEveningReflection, FireAt: at(t, "2024-05-01", 20, 0)}
	f.os.Put(existing)
	_ = f.repo.SaveScheduledIDs([]string{existing.ID})
	f.os.SetPermission(false)

	res, err := f.engine.Recompute(context.Background(), 6)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if res != nil {
		t.Errorf("expected no result, got %+v", res)
	}
	if len(f.os.CancelCalls()) != 0 || len(f.os.ScheduleCalls()) != 0 {
		t.Error("denied recompute touched the scheduler")
	}
	if _, ok := f.os.Get(existing.ID); !ok {
		t.Error("existing notification was removed")
	}
	if ids, _ := f.repo.ScheduledIDs(); len(ids) != 1 {
		t.Errorf("persisted ids changed: %v", ids)
	}
}

func TestRecompute_ScheduleFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	f.os.FailSchedule("eveningReflection-2024-05-01", errors.New("quota exceeded"))

	res, err := f.engine.Recompute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if !reflect.DeepEqual(res.Failed, []string{"eveningReflection-2024-05-01"}) {
		t.Errorf("Failed = %v", res.Failed)
	}
	persisted, _ := f.repo.ScheduledIDs()
	for _, id := range persisted {
		if id == "eveningReflection-2024-05-01" {
			t.Error("failed notification was persisted")
		}
	}
	if len(persisted) == 0 {
		t.Error("other notifications should still be scheduled")
	}
}

func TestRecompute_CancelsOwnedAndLegacyOnly(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), only(), "")
	ctx := context.Background()

	for _, id := range []string{"legacy-daily-1", "legacy-streak-1", "streakWarn1h-2024-04-30", "other-app-reminder", "milestone-2024-04-30-3"} {
		f.os.Put(models.ScheduledNotification{ID: id, FireAt: f.now.Add(time.Hour)})
	}
	_ = f.store.Set(constants.KeyLegacyDailyReminderID, "legacy-daily-1")
	_ = f.store.Set(constants.KeyLegacyStreakReminderID, "legacy-streak-1")
	_ = f.repo.SaveScheduledIDs([]string{"dailyReminder-2024-04-30"})

	res, err := f.engine.Recompute(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}

	wantCancelled := []string{"dailyReminder-2024-04-30", "legacy-daily-1", "legacy-streak-1", "streakWarn1h-2024-04-30"}
	if !reflect.DeepEqual(res.Cancelled, wantCancelled) {
		t.Errorf("cancelled %v, want %v", res.Cancelled, wantCancelled)
	}
	if got := f.pendingIDs(t); !reflect.DeepEqual(got, []string{"milestone-2024-04-30-3", "other-app-reminder"}) {
		t.Errorf("remaining %v", got)
	}
	for _, key := range []string{constants.KeyLegacyDailyReminderID, constants.KeyLegacyStreakReminderID} {
		if _, err := f.store.Get(key); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("legacy key %s not cleared", key)
		}
	}
	if n, _ := f.repo.LastStreakCount(); n != 0 {
		t.Errorf("streak persisted as %d", n)
	}
}

func TestRecompute_ConfiguresChannelsOnce(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), only(), "")
	for i := 0; i < 2; i++ {
		if _, err := f.engine.Recompute(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
	}
	if len(f.os.Channels()) != 3 {
		t.Errorf("channels = %+v", f.os.Channels())
	}
}

func TestRecompute_IgnoresCancellationAfterStart(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := f.engine.Recompute(ctx, 2)
	if err != nil {
		t.Fatalf("Recompute failed: %v", err)
	}
	if len(res.Scheduled) == 0 {
		t.Error("expected the pass to complete")
	}
}

func TestLegacyAdapters(t *testing.T) {
	f := newFixture(t, at(t, "2024-05-01", 9, 0), models.DefaultNotificationSettings(), "")
	ctx := context.Background()

	if !RecomputeSchedule(ctx, f.engine, 1) {
		t.Error("expected success")
	}

	OnDailyCompletion(ctx, NewCompletionTracker(f.engine), 3)
	if _, ok := f.os.Get("milestone-2024-05-01-3"); !ok {
		t.Error("expected milestone after completion")
	}

	f.os.SetPermission(false)
	if RecomputeSchedule(ctx, f.engine, 1) {
		t.Error("expected failure when permission is denied")
	}
	OnDailyCompletion(ctx, NewCompletionTracker(f.engine), 4)
}
