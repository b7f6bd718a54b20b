package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/julianstephens/versecue/internal/constants"
)

// NotificationSettings holds the user's reminder preferences. It is stored
// as one JSON document under constants.KeyNotificationSettings.
type NotificationSettings struct {
	DailyReminderEnabled     bool      `json:"daily_reminder_enabled"`
	MiddayNudgeEnabled       bool      `json:"midday_nudge_enabled"`
	EveningReflectionEnabled bool      `json:"evening_reflection_enabled"`
	StreakProtectionEnabled  bool      `json:"streak_protection_enabled"`
	ReengagementEnabled      bool      `json:"reengagement_enabled"`
	DailyReminderTime        TimeOfDay `json:"daily_reminder_time"`
	EveningReflectionTime    TimeOfDay `json:"evening_reflection_time"`
	StreakExpiryTime         TimeOfDay `json:"streak_expiry_time"`
	MiddayNudgeDaysPerWeek   int       `json:"midday_nudge_days_per_week"` // 0-7
	TonePreference           Tone      `json:"tone_preference"`
}

// DefaultNotificationSettings returns the settings a fresh install starts with.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		DailyReminderEnabled:     true,
		MiddayNudgeEnabled:       true,
		EveningReflectionEnabled: true,
		StreakProtectionEnabled:  true,
		ReengagementEnabled:      true,
		DailyReminderTime:        MustTimeOfDay(constants.DefaultDailyReminderTime),
		EveningReflectionTime:    MustTimeOfDay(constants.DefaultEveningReflectionTime),
		StreakExpiryTime:         MustTimeOfDay(constants.DefaultStreakExpiryTime),
		MiddayNudgeDaysPerWeek:   constants.DefaultMiddayNudgeDaysPerWeek,
		TonePreference:           DefaultTone,
	}
}

// Normalize clamps the nudge count and migrates the tone in place.
func (s *NotificationSettings) Normalize() {
	if s.MiddayNudgeDaysPerWeek < 0 {
		s.MiddayNudgeDaysPerWeek = 0
	}
	if s.MiddayNudgeDaysPerWeek > constants.HorizonDays {
		s.MiddayNudgeDaysPerWeek = constants.HorizonDays
	}
	s.TonePreference = NormalizeTone(string(s.TonePreference))
}

func (s NotificationSettings) Validate() error {
	var errs []error
	if err := s.DailyReminderTime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("daily reminder time: %w", err))
	}
	if err := s.EveningReflectionTime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("evening reflection time: %w", err))
	}
	if err := s.StreakExpiryTime.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("streak expiry time: %w", err))
	}
	if s.MiddayNudgeDaysPerWeek < 0 || s.MiddayNudgeDaysPerWeek > constants.HorizonDays {
		errs = append(errs, fmt.Errorf("midday nudge days per week %d out of range [0,%d]", s.MiddayNudgeDaysPerWeek, constants.HorizonDays))
	}
	return errors.Join(errs...)
}

// StreakAtRisk reports whether today's streak would lapse at expiry.
func (s NotificationSettings) StreakAtRisk(completedToday bool, streak int) bool {
	return !completedToday && s.StreakProtectionEnabled && streak > 0
}

// ParseNotificationSettings decodes a stored settings document. It never
// fails: empty, corrupt or invalid input yields the defaults and
// fellBack=true so the caller can log it.
func ParseNotificationSettings(raw string) (settings NotificationSettings, fellBack bool) {
	if raw == "" {
		return DefaultNotificationSettings(), true
	}

	// Start from defaults so fields missing from older documents keep sane values.
	settings = DefaultNotificationSettings()
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return DefaultNotificationSettings(), true
	}
	settings.Normalize()
	if err := settings.Validate(); err != nil {
		return DefaultNotificationSettings(), true
	}
	return settings, false
}

// Marshal serializes the settings for storage.
func (s NotificationSettings) Marshal() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
