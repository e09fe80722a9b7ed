package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crudclinic/clinic/internal/platform/apperr"
)

// Recovery turns a handler panic into the same 500 {"message":"internal
// error"} any unclassified failure gets, and logs the request id, route and
// stack. A panic after the response is committed is only logged.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recovery(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				if r == http.ErrAbortHandler {
					panic(r)
				}

				rid, _ := c.Get("request_id").(string)
				logger.Error().
					Str("request_id", rid).
					Str("method", c.Request().Method).
					Str("route", c.Path()).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")

				if c.Response().Committed {
					err = nil
					return
				}
				err = apperr.HTTP(fmt.Errorf("panic: %v", r))
			}()
			return next(c)
		}
	}
}
