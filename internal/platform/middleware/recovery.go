package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// PanicMessage is what the front desk sees when a handler panics. Nothing the
// request tried to save can be assumed stored.
const PanicMessage = "something went wrong and this entry was not saved, please try again"

// Recovery turns a handler panic into a 500 whose body carries the request id,
// so desk staff can quote it when reporting the failed entry.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)
				rid := RequestIDFromContext(c)

				logger.Error().
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("path", c.Path()).
					Str("panic", fmt.Sprint(r)).
					Bytes("stack", stack[:n]).
					Msg("handler panicked")

				err = echo.NewHTTPError(http.StatusInternalServerError, map[string]string{
					"message":    PanicMessage,
					"request_id": rid,
				})
			}()
			return next(c)
		}
	}
}
