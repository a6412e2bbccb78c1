// Package httperr turns service errors into echo HTTP errors.
package httperr

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/primelabs/primelabs/internal/platform/auth"
	"github.com/primelabs/primelabs/internal/platform/docstore"
)

// Coder is implemented by errors that know their HTTP status, such as
// validation failures.
type Coder interface {
	StatusCode() int
}

// From maps err to an *echo.HTTPError. Persistence failures are logged with
// the request's actor and answered with a message chosen by error kind.
func From(c echo.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if errors.Is(err, auth.ErrForbidden) {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	var coder Coder
	if errors.As(err, &coder) {
		return echo.NewHTTPError(coder.StatusCode(), err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) && c.Request().Context().Err() != nil {
		return echo.NewHTTPError(http.StatusGatewayTimeout, "request processing exceeded the allowed time limit")
	}

	kind := docstore.Classify(err)
	zerolog.Ctx(c.Request().Context()).Error().Err(err).
		Str("op", op).
		Str("kind", string(kind)).
		Msg("request failed")
	return echo.NewHTTPError(statusFor(kind), docstore.UserMessage(kind))
}

func statusFor(kind docstore.ErrorKind) int {
	switch kind {
	case docstore.KindNotFound:
		return http.StatusNotFound
	case docstore.KindValidation:
		return http.StatusBadRequest
	case docstore.KindNetwork:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// BadRequest returns a 400 when err matches one of targets.
func BadRequest(err error, targets ...error) (*echo.HTTPError, bool) {
	for _, t := range targets {
		if errors.Is(err, t) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error()), true
		}
	}
	return nil, false
}
