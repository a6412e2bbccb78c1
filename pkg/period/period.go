// Package period computes business-day and calendar-month windows in the
// lab's timezone.
package period

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrFutureMonth = errors.New("cannot generate a report for a future month")
	ErrBadRange    = errors.New("start date must not be after end date")
)

// Window is an inclusive [Start, End] interval.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Key identifies the window in cache keys.
func (w Window) Key() string {
	return fmt.Sprintf("%d-%d", w.Start.UnixMicro(), w.End.UnixMicro())
}

func endOfDay(t time.Time) time.Time {
	return t.AddDate(0, 0, 1).Add(-time.Microsecond)
}

// Day is the business day containing t.
func Day(t time.Time, loc *time.Location) Window {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: endOfDay(start)}
}

// ParseDay parses a YYYY-MM-DD date in loc. An empty string means today.
func ParseDay(s string, now time.Time, loc *time.Location) (Window, error) {
	if s == "" {
		return Day(now, loc), nil
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return Window{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return Day(t, loc), nil
}

// ParseRange covers the whole days from start through end. A missing bound
// defaults to today.
func ParseRange(start, end string, now time.Time, loc *time.Location) (Window, error) {
	from, err := ParseDay(start, now, loc)
	if err != nil {
		return Window{}, err
	}
	to, err := ParseDay(end, now, loc)
	if err != nil {
		return Window{}, err
	}
	if from.Start.After(to.Start) {
		return Window{}, ErrBadRange
	}
	return Window{Start: from.Start, End: to.End}, nil
}

// Month runs from the first day 00:00 to the last day 23:59:59.999999 in
// loc. Months after the one containing now are rejected.
func Month(year int, month time.Month, now time.Time, loc *time.Location) (Window, error) {
	if month < time.January || month > time.December {
		return Window{}, fmt.Errorf("invalid month %d", month)
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	now = now.In(loc)
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if start.After(current) {
		return Window{}, ErrFutureMonth
	}
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Microsecond)}, nil
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
