package constants

import "time"

const (
	// HorizonDays is the rolling window recomputed on every pass, today included.
	HorizonDays = 7

	// Budget caps
	MaxNotificationsPerWeek      = 7
	MaxNotificationsPerDay       = 2
	MaxNotificationsPerDayAtRisk = 3

	// ReminderExpiryLeadMin pulls the daily reminder ahead of the streak expiry
	// when the configured reminder time would land at or after it.
	ReminderExpiryLeadMin = 120

	// Streak protection ladder, in minutes before the expiry time
	StreakWarn4hLeadMin  = 240
	StreakWarn1hLeadMin  = 60
	StreakFinalLeadMin   = 15
	StreakFinalMinStreak = 5

	// Re-engagement ladder
	ReengageHour        = 18
	ReengageMinute      = 0
	ReengageTwoDay      = 2
	ReengageFiveDay     = 5
	ReengageWeeklyAfter = 7
	ReengageWeeklyCount = 4

	// Midday nudge window: [start, start+hours)
	MiddayWindowStartHour = 12
	MiddayWindowHours     = 2

	// MilestoneDelay keeps the celebration from racing the completion UI.
	MilestoneDelay = 5 * time.Second
)

// MilestoneStreaks are the streak counts that earn a celebration.
var MilestoneStreaks = []int{3, 7, 14, 30, 50, 100, 365}
