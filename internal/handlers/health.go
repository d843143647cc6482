package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness and whether ping reaches the database.
func HealthCheck(ping func(ctx context.Context) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status, database := http.StatusOK, "up"
		if ping != nil {
			if err := ping(ctx); err != nil {
				status, database = http.StatusServiceUnavailable, "down"
			}
		}
		return c.JSON(status, map[string]string{
			"status":   http.StatusText(status),
			"service":  "nano-social",
			"database": database,
		})
	}
}
