package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	HeaderSessionCleared = "X-Session-Cleared"
)

// SessionResolver turns a bearer token into a session. It returns
// ErrInvalidToken for tokens that fail verification.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*Session, error)
}

// SessionMiddleware resolves the session of every request. Requests without
// a token continue as unauthenticated so that public routes keep working;
// the route gates decide what to deny.
func SessionMiddleware(resolver SessionResolver, logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := &Session{Status: StatusUnauthenticated}

			if header := c.Request().Header.Get("Authorization"); header != "" {
				token, ok := bearerToken(header)
				if !ok {
					sess.Cleared = true
				} else {
					resolved, err := resolver.ResolveSession(c.Request().Context(), token)
					switch {
					case errors.Is(err, ErrInvalidToken):
						sess.Cleared = true
					case err != nil:
						rid, _ := c.Get("request_id").(string)
						logger.Error().Err(err).Str("request_id", rid).Msg("resolve session")
						return echo.NewHTTPError(http.StatusServiceUnavailable, "unable to verify session, try again")
					default:
						sess = resolved
					}
				}
			}

			ctx := WithSession(c.Request().Context(), sess)
			ctx = logger.With().Str("actor", sess.Email).Str("role", string(sess.Role)).Logger().WithContext(ctx)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Deny converts a non-approved status into the HTTP error for it. When the
// request carried a rejected token the response tells the client to drop it.
func Deny(c echo.Context, st Status) error {
	if st == StatusUnauthenticated {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, `Bearer error="invalid_token"`)
		if FromEcho(c).Cleared {
			c.Response().Header().Set(HeaderSessionCleared, "true")
		}
	}
	return echo.NewHTTPError(st.HTTPCode(), st.Message())
}
