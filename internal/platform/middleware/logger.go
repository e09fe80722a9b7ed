package middleware

import (
	"errors"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Logger writes one line per request. Errors are logged with their internal
// cause; the client only ever sees the public message.
func Logger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			status := c.Response().Status
			evt := logger.Info()
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
					if he.Internal != nil {
						evt = logger.Error().Err(he.Internal)
					} else if he.Code >= 500 {
						evt = logger.Error().Err(err)
					} else {
						evt = logger.Warn().Err(err)
					}
				} else {
					evt = logger.Error().Err(err)
					status = 500
				}
			}

			evt.
				Str("request_id", rid).
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")

			return err
		}
	}
}
