package backtest

import (
	"fmt"
	"time"
)

// PeriodBoundary groups trading days into cadence periods.
type PeriodBoundary interface {
	// BucketKey returns the period identifier for a date.
	BucketKey(t time.Time) string
	// IsFirstTradingDay reports whether bars[i] opens its period.
	IsFirstTradingDay(bars []Bar, i int) bool
	// IsLastTradingDay reports whether bars[i] closes its period. The final bar of
	// the series always closes its period.
	IsLastTradingDay(bars []Bar, i int) bool
}

// calendarBoundary implements PeriodBoundary on top of a date → key function.
type calendarBoundary struct {
	key func(time.Time) string
}

// BucketKey reads the calendar fields in t's own location.
func (b calendarBoundary) BucketKey(t time.Time) string {
	return b.key(t)
}

func (b calendarBoundary) IsFirstTradingDay(bars []Bar, i int) bool {
	if i <= 0 {
		return i == 0 && len(bars) > 0
	}
	if i >= len(bars) {
		return false
	}
	return b.BucketKey(bars[i-1].Date) != b.BucketKey(bars[i].Date)
}

func (b calendarBoundary) IsLastTradingDay(bars []Bar, i int) bool {
	if i < 0 || i >= len(bars) {
		return false
	}
	if i == len(bars)-1 {
		return true
	}
	return b.BucketKey(bars[i+1].Date) != b.BucketKey(bars[i].Date)
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

func monthKey(t time.Time) string { return t.Format("2006-01") }

func yearKey(t time.Time) string { return t.Format("2006") }

// DayBoundary makes every bar its own period.
func DayBoundary() PeriodBoundary { return calendarBoundary{key: dayKey} }

// WeekBoundary groups by ISO year and week number.
func WeekBoundary() PeriodBoundary { return calendarBoundary{key: weekKey} }

// MonthBoundary groups by calendar month.
func MonthBoundary() PeriodBoundary { return calendarBoundary{key: monthKey} }

// YearBoundary groups by calendar year.
func YearBoundary() PeriodBoundary { return calendarBoundary{key: yearKey} }

// BoundaryFor resolves a cadence to its PeriodBoundary.
func BoundaryFor(c Cadence) (PeriodBoundary, error) {
	switch c {
	case CadenceDay:
		return DayBoundary(), nil
	case CadenceWeek:
		return WeekBoundary(), nil
	case CadenceMonth:
		return MonthBoundary(), nil
	case CadenceYear:
		return YearBoundary(), nil
	}
	return nil, invalid("cadence", "unknown value %q", c)
}

// Period is an inclusive index range [Start, End] of bars sharing a bucket key.
type Period struct {
	Key   string
	Start int
	End   int
}

// Len returns the number of trading days in the period.
func (p Period) Len() int { return p.End - p.Start + 1 }

// Segment splits an ascending bar series into consecutive periods.
func Segment(bars []Bar, boundary PeriodBoundary) []Period {
	var periods []Period
	for i := range bars {
		if boundary.IsFirstTradingDay(bars, i) {
			periods = append(periods, Period{Key: boundary.BucketKey(bars[i].Date), Start: i})
		}
		if boundary.IsLastTradingDay(bars, i) {
			periods[len(periods)-1].End = i
		}
	}
	return periods
}
