package models

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/julianstephens/versecue/internal/constants"
)

// SettingsToMap converts settings to the key/value form shown by the CLI.
func SettingsToMap(s NotificationSettings) map[string]string {
	return map[string]string{
		constants.SettingDailyReminderEnabled:     strconv.FormatBool(s.DailyReminderEnabled),
		constants.SettingMiddayNudgeEnabled:       strconv.FormatBool(s.MiddayNudgeEnabled),
		constants.SettingEveningReflectionEnabled: strconv.FormatBool(s.EveningReflectionEnabled),
		constants.SettingStreakProtectionEnabled:  strconv.FormatBool(s.StreakProtectionEnabled),
		constants.SettingReengagementEnabled:      strconv.FormatBool(s.ReengagementEnabled),
		constants.SettingDailyReminderTime:        s.DailyReminderTime.String(),
		constants.SettingEveningReflectionTime:    s.EveningReflectionTime.String(),
		constants.SettingStreakExpiryTime:         s.StreakExpiryTime.String(),
		constants.SettingMiddayNudgeDaysPerWeek:   strconv.Itoa(s.MiddayNudgeDaysPerWeek),
		constants.SettingTonePreference:           string(s.TonePreference),
	}
}

// MapToSettings applies every key in data on top of the defaults.
func MapToSettings(data map[string]string) (NotificationSettings, error) {
	settings := DefaultNotificationSettings()
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ApplySetting(&settings, key, data[key]); err != nil {
			return NotificationSettings{}, err
		}
	}
	return settings, nil
}

// SettingKeys returns the names accepted by ApplySetting, sorted.
func SettingKeys() []string {
	keys := make([]string, 0, 10)
	for k := range SettingsToMap(DefaultNotificationSettings()) {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ApplySetting parses value and stores it in the field named by key.
func ApplySetting(s *NotificationSettings, key, value string) error {
	switch key {
	case constants.SettingDailyReminderEnabled:
		return parseBoolInto(&s.DailyReminderEnabled, key, value)
	case constants.SettingMiddayNudgeEnabled:
		return parseBoolInto(&s.MiddayNudgeEnabled, key, value)
	case constants.SettingEveningReflectionEnabled:
		return parseBoolInto(&s.EveningReflectionEnabled, key, value)
	case constants.SettingStreakProtectionEnabled:
		return parseBoolInto(&s.StreakProtectionEnabled, key, value)
	case constants.SettingReengagementEnabled:
		return parseBoolInto(&s.ReengagementEnabled, key, value)
	case constants.SettingDailyReminderTime:
		return parseTimeInto(&s.DailyReminderTime, key, value)
	case constants.SettingEveningReflectionTime:
		return parseTimeInto(&s.EveningReflectionTime, key, value)
	case constants.SettingStreakExpiryTime:
		return parseTimeInto(&s.StreakExpiryTime, key, value)
	case constants.SettingMiddayNudgeDaysPerWeek:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		if n < 0 || n > constants.HorizonDays {
			return fmt.Errorf("%s must be between 0 and %d", key, constants.HorizonDays)
		}
		s.MiddayNudgeDaysPerWeek = n
	case constants.SettingTonePreference:
		s.TonePreference = NormalizeTone(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func parseBoolInto(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = b
	return nil
}

func parseTimeInto(dst *TimeOfDay, key, value string) error {
	tod, err := ParseTimeOfDay(value)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", key, err)
	}
	*dst = tod
	return nil
}
