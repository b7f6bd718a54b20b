package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/logger"
	"github.com/julianstephens/versecue/internal/models"
)

// Repository is the typed view of the scheduling state held in a Provider.
type Repository struct {
	p Provider
}

func NewRepository(p Provider) *Repository {
	return &Repository{p: p}
}

// Provider exposes the underlying store for components that own their own keys.
func (r *Repository) Provider() Provider {
	return r.p
}

func (r *Repository) getOptional(key string) (string, bool, error) {
	v, err := r.p.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

// LoadSettings returns the stored preferences. Missing or corrupt documents
// yield the defaults; only store I/O failures are returned.
func (r *Repository) LoadSettings() (models.NotificationSettings, error) {
	raw, ok, err := r.getOptional(constants.KeyNotificationSettings)
	if err != nil {
		return models.DefaultNotificationSettings(), err
	}
	if !ok {
		return models.DefaultNotificationSettings(), nil
	}

	settings, fellBack := models.ParseNotificationSettings(raw)
	if fellBack {
		logger.Warn("Stored notification settings are invalid, using defaults", "key", constants.KeyNotificationSettings)
	}
	return settings, nil
}

func (r *Repository) SaveSettings(s models.NotificationSettings) error {
	s.Normalize()
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	raw, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to serialize settings: %w", err)
	}
	return r.p.Set(constants.KeyNotificationSettings, raw)
}

// LastCompletionDate returns the YYYY-MM-DD of the most recent completion, or
// "" when the user has never completed a day.
func (r *Repository) LastCompletionDate() (string, error) {
	v, ok, err := r.getOptional(constants.KeyLastCompletionDate)
	if err != nil || !ok {
		return "", err
	}
	if _, perr := time.Parse(constants.DateFormat, v); perr != nil {
		logger.Warn("Ignoring malformed last completion date", "value", v)
		return "", nil
	}
	return v, nil
}

func (r *Repository) SetLastCompletionDate(date string) error {
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid completion date %q: %w", date, err)
	}
	return r.p.Set(constants.KeyLastCompletionDate, date)
}

// ScheduledIDs returns the identifiers the engine placed in its last pass.
func (r *Repository) ScheduledIDs() ([]string, error) {
	raw, ok, err := r.getOptional(constants.KeyScheduledIDs)
	if err != nil || !ok {
		return []string{}, err
	}
	var ids []string
	if jerr := json.Unmarshal([]byte(raw), &ids); jerr != nil {
		logger.Warn("Ignoring corrupt scheduled identifier list", "error", jerr)
		return []string{}, nil
	}
	return ids, nil
}

// SaveScheduledIDs replaces the persisted identifier list wholesale.
func (r *Repository) SaveScheduledIDs(ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to serialize scheduled identifiers: %w", err)
	}
	return r.p.Set(constants.KeyScheduledIDs, string(data))
}

// TakeLegacyIDs reads and clears the single-identifier keys written by older
// releases. It never writes them.
func (r *Repository) TakeLegacyIDs() ([]string, error) {
	var ids []string
	for _, key := range []string{constants.KeyLegacyDailyReminderID, constants.KeyLegacyStreakReminderID} {
		v, ok, err := r.getOptional(key)
		if err != nil {
			return ids, err
		}
		if !ok {
			continue
		}
		if v != "" {
			ids = append(ids, v)
		}
		if err := r.p.Delete(key); err != nil {
			return ids, fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return ids, nil
}

// LastStreakCount is the streak used by the most recent recompute. Settings
// edits replay it.
func (r *Repository) LastStreakCount() (int, error) {
	v, ok, err := r.getOptional(constants.KeyLastStreakCount)
	if err != nil || !ok {
		return 0, err
	}
	n, perr := strconv.Atoi(v)
	if perr != nil || n < 0 {
		logger.Warn("Ignoring malformed streak count", "value", v)
		return 0, nil
	}
	return n, nil
}

func (r *Repository) SaveLastStreakCount(n int) error {
	if n < 0 {
		n = 0
	}
	return r.p.Set(constants.KeyLastStreakCount, strconv.Itoa(n))
}
