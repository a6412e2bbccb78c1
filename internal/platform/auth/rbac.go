package auth

import (
	"github.com/labstack/echo/v4"
)

// RequireAuthenticated admits any verified token, whatever its approval state.
func RequireAuthenticated() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if sess := FromEcho(c); sess.Status == StatusUnauthenticated {
				return Deny(c, StatusUnauthenticated)
			}
			return next(c)
		}
	}
}

// RequireApproved admits approved accounts and owners.
func RequireApproved() echo.MiddlewareFunc {
	return RequireRole()
}

// RequireRole admits approved sessions holding one of roles. Owners and
// Admins always pass.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if st := FromEcho(c).Authorize(roles...); st != StatusApproved {
				return Deny(c, st)
			}
			return next(c)
		}
	}
}

// RequireAdmin admits owners and approved Admins.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(RoleAdmin)
}

// RequireOwner admits owners only.
func RequireOwner() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := FromEcho(c)
			if sess.Status != StatusApproved {
				return Deny(c, sess.Status)
			}
			if !sess.Owner {
				return Deny(c, StatusUnauthorized)
			}
			return next(c)
		}
	}
}
