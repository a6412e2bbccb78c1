package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ""},
		{"not found", fmt.Errorf("read: %w", ErrNotFound), KindNotFound},
		{"duplicate", ErrAlreadyExists, KindValidation},
		{"bad query", ErrInvalidQuery, KindValidation},
		{"deadline", context.DeadlineExceeded, KindNetwork},
		{"pg privilege", &pgconn.PgError{Code: "42501"}, KindPermission},
		{"pg connection", &pgconn.PgError{Code: "08006"}, KindNetwork},
		{"pg constraint", &pgconn.PgError{Code: "23502"}, KindValidation},
		{"pg other", &pgconn.PgError{Code: "XX000"}, KindOther},
		{"keyword permission", errors.New("403 Forbidden"), KindPermission},
		{"keyword network", errors.New("dial tcp: connection refused"), KindNetwork},
		{"keyword validation", errors.New("field is required"), KindValidation},
		{"unknown", errors.New("boom"), KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	for _, k := range []ErrorKind{KindPermission, KindNetwork, KindValidation, KindNotFound, KindOther} {
		if UserMessage(k) == "" {
			t.Errorf("empty message for %s", k)
		}
	}
	if UserMessage(KindPermission) == UserMessage(KindNetwork) {
		t.Error("permission and network messages should differ")
	}
}
