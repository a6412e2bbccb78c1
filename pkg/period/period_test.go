package period

import (
	"errors"
	"testing"
	"time"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

func TestMonth_Ranges(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, ist)
	tests := []struct {
		year    int
		month   time.Month
		lastDay int
	}{
		{2026, time.February, 28},
		{2024, time.February, 29},
		{2025, time.December, 31},
		{2026, time.January, 31},
	}
	for _, tt := range tests {
		w, err := Month(tt.year, tt.month, now, ist)
		if err != nil {
			t.Fatalf("%d-%d: %v", tt.year, tt.month, err)
		}
		if w.Start.Day() != 1 || w.Start.Hour() != 0 || w.Start.Month() != tt.month {
			t.Errorf("%d-%d: bad start %v", tt.year, tt.month, w.Start)
		}
		if w.End.Day() != tt.lastDay || w.End.Hour() != 23 || w.End.Minute() != 59 ||
			w.End.Second() != 59 || w.End.Nanosecond() != 999999000 {
			t.Errorf("%d-%d: bad end %v", tt.year, tt.month, w.End)
		}
		if DaysIn(tt.year, tt.month) != tt.lastDay {
			t.Errorf("%d-%d: expected %d days", tt.year, tt.month, tt.lastDay)
		}
	}
}

func TestMonth_FutureRejected(t *testing.T) {
	now := time.Date(2026, 3, 31, 23, 0, 0, 0, ist)
	if _, err := Month(2026, time.April, now, ist); !errors.Is(err, ErrFutureMonth) {
		t.Errorf("expected ErrFutureMonth, got %v", err)
	}
	if _, err := Month(2026, time.March, now, ist); err != nil {
		t.Errorf("current month should be allowed: %v", err)
	}
	if _, err := Month(2026, 13, now, ist); err == nil {
		t.Error("expected error for month 13")
	}
}

func TestDay_UsesBusinessTimezone(t *testing.T) {
	// 20:00 UTC on the 1st is already the 2nd in IST.
	w := Day(time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC), ist)
	if w.Start.Day() != 2 {
		t.Errorf("expected day 2, got %v", w.Start)
	}
	if !w.Contains(w.Start) || !w.Contains(w.End) || w.Contains(w.End.Add(time.Microsecond)) {
		t.Error("window must be inclusive of both bounds only")
	}
}

func TestParseRange(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, ist)
	w, err := ParseRange("2024-05-01", "2024-05-03", now, ist)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Start.Day() != 1 || w.End.Day() != 3 {
		t.Errorf("unexpected window %v", w)
	}
	if _, err := ParseRange("2024-05-03", "2024-05-01", now, ist); !errors.Is(err, ErrBadRange) {
		t.Errorf("expected ErrBadRange, got %v", err)
	}
	if _, err := ParseRange("05/01/2024", "", now, ist); err == nil {
		t.Error("expected error for bad layout")
	}
	w, _ = ParseRange("", "", now, ist)
	if w.Start.Day() != 10 || w.End.Day() != 10 {
		t.Errorf("expected today, got %v", w)
	}
}
