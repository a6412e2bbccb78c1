package auth

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
)

// ErrForbidden is returned by services when the acting session may not
// perform a write.
var ErrForbidden = errors.New("you don't have permission to perform this action")

// Identity is what a verified credential token proves.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Session is the per-request authorization context. The session middleware
// builds one for every request; handlers read it with FromEcho.
type Session struct {
	Status Status `json:"status"`
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role,omitempty"`
	Owner  bool   `json:"owner"`
	// Cleared is set when a token was presented but failed verification;
	// the client must drop it.
	Cleared bool `json:"-"`
}

// Authorize applies the role requirement to an approved session. Owners
// and Admins pass every requirement.
func (s *Session) Authorize(required ...Role) Status {
	if s == nil {
		return StatusUnauthenticated
	}
	if s.Status != StatusApproved {
		return s.Status
	}
	if s.Owner || s.Role == RoleAdmin || len(required) == 0 {
		return StatusApproved
	}
	for _, r := range required {
		if s.Role == r {
			return StatusApproved
		}
	}
	return StatusUnauthorized
}

// IsAdmin reports whether the session may act on other accounts.
func (s *Session) IsAdmin() bool {
	return s.Authorize(RoleAdmin) == StatusApproved
}

// Actor is the identity stamped on writes.
func (s *Session) Actor() string {
	if s == nil {
		return ""
	}
	return s.Email
}

type sessionKey struct{}

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext never returns nil; a missing session is unauthenticated.
func SessionFromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(sessionKey{}).(*Session); ok && s != nil {
		return s
	}
	return &Session{Status: StatusUnauthenticated}
}

func FromEcho(c echo.Context) *Session {
	return SessionFromContext(c.Request().Context())
}
