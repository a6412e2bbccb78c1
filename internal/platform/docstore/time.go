package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimeLayout is fixed width so encoded timestamps sort lexically in every backend.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Time is a UTC timestamp that encodes with TimeLayout.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{Time: t.UTC().Truncate(time.Microsecond)}
}

func Now() Time {
	return NewTime(time.Now())
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatTime(t.Time))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("decode time: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(TimeLayout, s)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("decode time %q: %w", s, err)
		}
	}
	t.Time = parsed.UTC()
	return nil
}
