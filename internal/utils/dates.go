package utils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-day format used in the API and in CSV files.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns midnight UTC of that day.
// For RFC3339 input the day is the one written in the string, whatever its offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return TruncateDay(t), nil
}

// ParseOptionalDate returns nil for an empty string.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// TruncateDay drops the time-of-day, keeping the calendar day of t's own location.
func TruncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateToUnix converts a calendar day to the unix seconds stored in the history tables.
func DateToUnix(t time.Time) int64 {
	return TruncateDay(t).Unix()
}

// UnixToDate is the inverse of DateToUnix.
func UnixToDate(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}
