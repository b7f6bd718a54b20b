package constants

const (
	// Store keys
	KeyNotificationSettings   = "notification_settings"
	KeyLastCompletionDate     = "last_completion_date"
	KeyScheduledIDs           = "scheduled_notification_ids"
	KeyLastStreakCount        = "last_streak_count"
	KeyNotificationPermission = "notification_permission"

	// Legacy single-identifier keys written by older releases. Read and
	// cleared, never written.
	KeyLegacyDailyReminderID  = "daily_reminder_notification_id"
	KeyLegacyStreakReminderID = "streak_notification_id"

	// Key prefixes owned by the local notification queue
	PendingNotificationPrefix = "pending_notification:"
	ChannelPrefix             = "channel:"

	PermissionGranted = "granted"
	PermissionDenied  = "denied"

	// Setting names accepted by `settings set`
	SettingDailyReminderEnabled     = "daily_reminder_enabled"
	SettingMiddayNudgeEnabled       = "midday_nudge_enabled"
	SettingEveningReflectionEnabled = "evening_reflection_enabled"
	SettingStreakProtectionEnabled  = "streak_protection_enabled"
	SettingReengagementEnabled      = "reengagement_enabled"
	SettingDailyReminderTime        = "daily_reminder_time"
	SettingEveningReflectionTime    = "evening_reflection_time"
	SettingStreakExpiryTime         = "streak_expiry_time"
	SettingMiddayNudgeDaysPerWeek   = "midday_nudge_days_per_week"
	SettingTonePreference           = "tone_preference"

	// Default Settings Values
	DefaultDailyReminderTime      = "08:00"
	DefaultEveningReflectionTime  = "20:00"
	DefaultStreakExpiryTime       = "23:59"
	DefaultMiddayNudgeDaysPerWeek = 3
)
