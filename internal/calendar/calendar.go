// Package calendar converts between calendar-date strings in one configured
// timezone and absolute instants.
//
// Wall-time resolution does not consult transition tables directly: DateAt
// starts from a naive UTC estimate and probes a configurable range of
// offsets, keeping the first candidate whose reformatted date and time match
// exactly. This handles daylight-saving shifts for the deployed region; the
// probe range must be revisited if the region changes.
package calendar

import (
	"fmt"
	"time"

	"github.com/julianstephens/versecue/internal/constants"
	"github.com/julianstephens/versecue/internal/logger"
)

// ProbeRange bounds the offsets tried by DateAt.
type ProbeRange struct {
	MinHours    int
	MaxHours    int
	StepMinutes int
}

// DefaultProbeRange covers every real-world UTC offset in whole hours.
func DefaultProbeRange() ProbeRange {
	return ProbeRange{
		MinHours:    constants.DefaultProbeMinHours,
		MaxHours:    constants.DefaultProbeMaxHours,
		StepMinutes: constants.DefaultProbeStepMinutes,
	}
}

func (p ProbeRange) Validate() error {
	if p.MinHours > p.MaxHours {
		return fmt.Errorf("probe range min %dh is after max %dh", p.MinHours, p.MaxHours)
	}
	if p.StepMinutes <= 0 || p.StepMinutes > 60 || 60%p.StepMinutes != 0 {
		return fmt.Errorf("probe step %d minutes must divide 60", p.StepMinutes)
	}
	return nil
}

// Calendar performs date arithmetic in a single named timezone.
type Calendar struct {
	loc   *time.Location
	probe ProbeRange
}

type Option func(*Calendar)

// WithProbeRange overrides DefaultProbeRange.
func WithProbeRange(p ProbeRange) Option {
	return func(c *Calendar) {
		c.probe = p
	}
}

// New loads timezone from the runtime's zone information. An empty name or
// "Local" selects the system zone.
func New(timezone string, opts ...Option) (*Calendar, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return NewWithLocation(loc, opts...)
}

// NewWithLocation builds a Calendar around an already-loaded location.
func NewWithLocation(loc *time.Location, opts ...Option) (*Calendar, error) {
	c := &Calendar{loc: loc, probe: DefaultProbeRange()}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.probe.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Probe() ProbeRange { return c.probe }

// DateString returns t's calendar date (YYYY-MM-DD) as observed in the zone.
func (c *Calendar) DateString(t time.Time) string {
	return t.In(c.loc).Format(constants.DateFormat)
}

// Today is DateString(now).
func (c *Calendar) Today(now time.Time) string {
	return c.DateString(now)
}

// HourMinute returns the wall-clock hour and minute of t in the zone.
func (c *Calendar) HourMinute(t time.Time) (int, int) {
	local := t.In(c.loc)
	return local.Hour(), local.Minute()
}

// Resolution reports how DateAtResolution found its instant.
type Resolution struct {
	Instant time.Time
	// Offset is the probe offset that matched, relative to the naive UTC estimate.
	Offset time.Duration
	// Degraded is set when no probed offset matched and Instant is the naive estimate.
	Degraded bool
}

// DateAt returns the instant that reformats in the zone to exactly dateStr
// at hour:minute. When no probe matches (for example a wall time skipped by
// a spring-forward transition) the naive UTC estimate is returned and a
// warning is logged.
func (c *Calendar) DateAt(dateStr string, hour, minute int) (time.Time, error) {
	res, err := c.DateAtResolution(dateStr, hour, minute)
	if err != nil {
		return time.Time{}, err
	}
	return res.Instant, nil
}

func (c *Calendar) DateAtResolution(dateStr string, hour, minute int) (Resolution, error) {
	day, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return Resolution{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return Resolution{}, fmt.Errorf("invalid time %02d:%02d", hour, minute)
	}

	naive := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	step := time.Duration(c.probe.StepMinutes) * time.Minute
	start := time.Duration(c.probe.MinHours) * time.Hour
	end := time.Duration(c.probe.MaxHours) * time.Hour

	for off := start; off <= end; off += step {
		candidate := naive.Add(off)
		if c.matches(candidate, dateStr, hour, minute) {
			return Resolution{Instant: candidate, Offset: off}, nil
		}
	}

	logger.Warn("No timezone offset matched wall time, using naive estimate",
		"date", dateStr, "time", fmt.Sprintf("%02d:%02d", hour, minute), "zone", c.loc.String())
	return Resolution{Instant: naive, Degraded: true}, nil
}

func (c *Calendar) matches(t time.Time, dateStr string, hour, minute int) bool {
	if c.DateString(t) != dateStr {
		return false
	}
	h, m := c.HourMinute(t)
	return h == hour && m == minute
}

// anchor pins a date string to noon UTC so day arithmetic never crosses a
// clock shift.
func anchor(dateStr string) (time.Time, error) {
	d, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.UTC), nil
}

// AddDays returns dateStr shifted by n calendar days.
func AddDays(dateStr string, n int) (string, error) {
	t, err := anchor(dateStr)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(constants.DateFormat), nil
}

// DaysBetween returns the number of calendar days from a to b (negative if b is earlier).
func DaysBetween(a, b string) (int, error) {
	ta, err := anchor(a)
	if err != nil {
		return 0, err
	}
	tb, err := anchor(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta).Hours() / 24), nil
}
