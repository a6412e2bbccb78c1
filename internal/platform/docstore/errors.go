package docstore

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

type ErrorKind string

const (
	KindPermission ErrorKind = "permission"
	KindNetwork    ErrorKind = "network"
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindOther      ErrorKind = "other"
)

func newID() string {
	return uuid.New().String()
}

// Classify sorts a persistence error into a kind. Typed driver errors are
// checked first; anything else falls back to matching keywords in the
// message.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidQuery), errors.Is(err, ErrAlreadyExists):
		return KindValidation
	case errors.Is(err, context.DeadlineExceeded):
		return KindNetwork
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "42501" || strings.HasPrefix(pgErr.Code, "28"):
			return KindPermission
		case strings.HasPrefix(pgErr.Code, "08"), strings.HasPrefix(pgErr.Code, "57P"):
			return KindNetwork
		case strings.HasPrefix(pgErr.Code, "22"), strings.HasPrefix(pgErr.Code, "23"):
			return KindValidation
		}
		return KindOther
	}
	if pgconn.Timeout(err) || mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return KindNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range []string{"permission", "denied", "unauthorized", "forbidden", "unauthenticated"} {
		if strings.Contains(msg, kw) {
			return KindPermission
		}
	}
	for _, kw := range []string{"network", "connection", "timeout", "unavailable", "refused", "deadline", "reset by peer"} {
		if strings.Contains(msg, kw) {
			return KindNetwork
		}
	}
	for _, kw := range []string{"invalid", "validation", "required", "constraint"} {
		if strings.Contains(msg, kw) {
			return KindValidation
		}
	}
	return KindOther
}

// UserMessage is the text shown to staff when a write finally fails.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindPermission:
		return "Permission denied. Please contact the administrator."
	case KindNetwork:
		return "Network error. Please check your connection and try again."
	case KindValidation:
		return "Data validation error. Please check your entries."
	case KindNotFound:
		return "The requested item was not found."
	}
	return "Failed to save. Please try again."
}
