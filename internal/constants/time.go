package constants

const (
	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// DefaultTimezone is the single region the reminder engine is deployed for.
	DefaultTimezone = "America/New_York"

	// Probe window used to resolve a local wall time to an instant. Offsets are
	// tried from min to max, so an ambiguous fall-back time resolves to its
	// first occurrence.
	DefaultProbeMinHours    = -14
	DefaultProbeMaxHours    = 14
	DefaultProbeStepMinutes = 60
)
