package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"shopsense/business/ranking"
)

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with a trace id, honoring one supplied
// by the caller. The id rides the request context so pipeline logs can
// be correlated with the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			traceID := c.Request().Header.Get(requestIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			ctx := ranking.WithTraceID(c.Request().Context(), traceID)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Response().Header().Set(requestIDHeader, traceID)

			return next(c)
		}
	}
}
