package calendar

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"
)

func newNewYork(t *testing.T, opts ...Option) *Calendar {
	t.Helper()
	c, err := New("America/New_York", opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestDateAt_RoundTripsAcrossDST(t *testing.T) {
	c := newNewYork(t)

	// 2024-03-10 spring forward, 2024-11-03 fall back in America/New_York.
	dates := []string{
		"2024-03-09", "2024-03-10", "2024-03-11",
		"2024-11-02", "2024-11-03", "2024-11-04",
	}

	for _, date := range dates {
		t.Run(date, func(t *testing.T) {
			instant, err := c.DateAt(date, 8, 0)
			if err != nil {
				t.Fatalf("DateAt failed: %v", err)
			}
			if got := c.DateString(instant); got != date {
				t.Errorf("DateString = %s, want %s", got, date)
			}
			h, m := c.HourMinute(instant)
			if got := fmt.Sprintf("%02d:%02d", h, m); got != "08:00" {
				t.Errorf("HourMinute = %s, want 08:00", got)
			}
		})
	}
}

func TestDateAt_UTCOffsetsFollowDST(t *testing.T) {
	c := newNewYork(t)

	before, _ := c.DateAt("2024-03-09", 8, 0)
	after, _ := c.DateAt("2024-03-11", 8, 0)

	if before.UTC().Hour() != 13 {
		t.Errorf("expected 13:00 UTC before spring forward (EST), got %s", before.UTC())
	}
	if after.UTC().Hour() != 12 {
		t.Errorf("expected 12:00 UTC after spring forward (EDT), got %s", after.UTC())
	}
}

func TestDateAt_AmbiguousFallBackPicksFirstOccurrence(t *testing.T) {
	c := newNewYork(t)

	res, err := c.DateAtResolution("2024-11-03", 1, 30)
	if err != nil {
		t.Fatalf("DateAtResolution failed: %v", err)
	}
	if res.Degraded {
		t.Fatal("did not expect a degraded resolution")
	}
	// 01:30 EDT is 05:30 UTC; the repeated 01:30 EST would be 06:30 UTC.
	want := time.Date(2024, 11, 3, 5, 30, 0, 0, time.UTC)
	if !res.Instant.Equal(want) {
		t.Errorf("got %s, want %s", res.Instant.UTC(), want)
	}
}

func TestDateAt_SkippedWallTimeDegradesToNaive(t *testing.T) {
	c := newNewYork(t)

	// 02:30 does not exist on 2024-03-10 in New York.
	res, err := c.DateAtResolution("2024-03-10", 2, 30)
	if err != nil {
		t.Fatalf("DateAtResolution failed: %v", err)
	}
	if !res.Degraded {
		t.Fatal("expected degraded resolution for skipped wall time")
	}
	want := time.Date(2024, 3, 10, 2, 30, 0, 0, time.UTC)
	if !res.Instant.Equal(want) {
		t.Errorf("expected naive estimate %s, got %s", want, res.Instant)
	}
}

func TestDateAt_NarrowProbeRangeMisses(t *testing.T) {
	c := newNewYork(t, WithProbeRange(ProbeRange{MinHours: -2, MaxHours: 2, StepMinutes: 60}))

	res, err := c.DateAtResolution("2024-05-01", 8, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Degraded {
		t.Error("expected a miss when the probe range excludes the zone offset")
	}
}

func TestDateAt_HalfHourZoneNeedsFinerStep(t *testing.T) {
	coarse, err := New("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	res, _ := coarse.DateAtResolution("2024-05-01", 8, 0)
	if !res.Degraded {
		t.Error("expected whole-hour probing to miss a +05:30 zone")
	}

	fine, err := New("Asia/Kolkata", WithProbeRange(ProbeRange{MinHours: -14, MaxHours: 14, StepMinutes: 30}))
	if err != nil {
		t.Fatal(err)
	}
	res, _ = fine.DateAtResolution("2024-05-01", 8, 0)
	if res.Degraded {
		t.Fatal("expected 30-minute probing to match")
	}
	if h, m := fine.HourMinute(res.Instant); h != 8 || m != 0 {
		t.Errorf("got %02d:%02d", h, m)
	}
}

func TestDateAt_InvalidInput(t *testing.T) {
	c := newNewYork(t)
	if _, err := c.DateAt("2024-02-30", 8, 0); err == nil {
		t.Error("expected error for invalid date")
	}
	if _, err := c.DateAt("2024-05-01", 24, 0); err == nil {
		t.Error("expected error for hour 24")
	}
	if _, err := c.DateAt("2024-05-01", 8, 60); err == nil {
		t.Error("expected error for minute 60")
	}
}

func TestNew_RejectsBadProbeRange(t *testing.T) {
	bad := []ProbeRange{
		{MinHours: 3, MaxHours: -3, StepMinutes: 60},
		{MinHours: -3, MaxHours: 3, StepMinutes: 0},
		{MinHours: -3, MaxHours: 3, StepMinutes: 45},
	}
	for _, p := range bad {
		if _, err := New("America/New_York", WithProbeRange(p)); err == nil {
			t.Errorf("expected error for %+v", p)
		}
	}
	if _, err := New("Mars/Olympus_Mons"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestDateString_UsesZone(t *testing.T) {
	c := newNewYork(t)
	// 02:00 UTC on May 2 is still May 1 in New York.
	instant := time.Date(2024, 5, 2, 2, 0, 0, 0, time.UTC)
	if got := c.DateString(instant); got != "2024-05-01" {
		t.Errorf("DateString = %s, want 2024-05-01", got)
	}
	if h, m := c.HourMinute(instant); h != 22 || m != 0 {
		t.Errorf("HourMinute = %02d:%02d, want 22:00", h, m)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		date string
		n    int
		want string
	}{
		{"2024-05-01", 0, "2024-05-01"},
		{"2024-05-01", 6, "2024-05-07"},
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-03-09", 2, "2024-03-11"},
		{"2024-03-01", -1, "2024-02-29"},
	}

	for _, tt := range tests {
		got, err := AddDays(tt.date, tt.n)
		if err != nil {
			t.Fatalf("AddDays(%s, %d) failed: %v", tt.date, tt.n, err)
		}
		if got != tt.want {
			t.Errorf("AddDays(%s, %d) = %s, want %s", tt.date, tt.n, got, tt.want)
		}
	}

	if _, err := AddDays("not-a-date", 1); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2024-05-01", "2024-05-01", 0},
		{"2024-04-29", "2024-05-01", 2},
		{"2024-05-01", "2024-04-29", -2},
		{"2024-03-09", "2024-03-11", 2},
		{"2024-10-30", "2024-11-06", 7},
		{"2023-12-25", "2024-01-01", 7},
	}

	for _, tt := range tests {
		got, err := DaysBetween(tt.a, tt.b)
		if err != nil {
			t.Fatalf("DaysBetween(%s, %s) failed: %v", tt.a, tt.b, err)
		}
		if got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
