package db

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// ConnMiddleware acquires one pooled connection per request and binds it to
// the request context, so every statement of the request (and a transaction
// begun by TxRunner) runs on it. The connection is released when the
// handler returns, whatever the outcome.
func ConnMiddleware(pool *pgxpool.Pool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			conn, err := pool.Acquire(ctx)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "database unavailable").SetInternal(err)
			}
			defer conn.Release()

			c.SetRequest(c.Request().WithContext(WithQuerier(ctx, conn)))
			return next(c)
		}
	}
}
