// Package timeofday provides a date-less clock time used for medication
// reminder schedules. Values round-trip through PostgreSQL TIME columns as
// "HH:MM" strings.
package timeofday

import (
	"fmt"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// New returns a validated TimeOfDay.
func New(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if !t.Valid() {
		return TimeOfDay{}, fmt.Errorf("time of day out of range: %02d:%02d", hour, minute)
	}
	return t, nil
}

// Valid reports whether the value is a real clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String formats the value in 24-hour "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Clock formats the value in 12-hour "03:04 PM" form for dialogue output.
func (t TimeOfDay) Clock() string {
	return time.Date(0, 1, 1, t.Hour, t.Minute, 0, 0, time.UTC).Format("03:04 PM")
}

// Before reports whether t is earlier than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	if t.Hour != other.Hour {
		return t.Hour < other.Hour
	}
	return t.Minute < other.Minute
}

// AtOrBefore reports whether t is no later than the clock time of ts.
func (t TimeOfDay) AtOrBefore(ts time.Time) bool {
	if t.Hour != ts.Hour() {
		return t.Hour < ts.Hour()
	}
	return t.Minute <= ts.Minute()
}

var parseLayouts = []string{
	"15:04",
	"15:04:05",
	"03:04 PM",
	"3:04 PM",
	"03:04PM",
	"3:04PM",
	"3 PM",
	"3PM",
}

// Parse accepts a clock time in common 24-hour and 12-hour notations, e.g.
// "09:00", "9:00 am", "01:00 PM". Leading and trailing whitespace is ignored.
func Parse(s string) (TimeOfDay, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range parseLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return TimeOfDay{Hour: ts.Hour(), Minute: ts.Minute()}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("unrecognized time of day: %q", s)
}

// ParseList parses a comma-separated list of clock times. Empty segments are
// rejected so that "09:00,," surfaces an error instead of a silent skip.
func ParseList(s string) ([]TimeOfDay, error) {
	parts := strings.Split(s, ",")
	times := make([]TimeOfDay, 0, len(parts))
	for _, part := range parts {
		t, err := Parse(part)
		if err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, nil
}
