package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"shopsense/pkg/logger"
	jsonres "shopsense/pkg/response"
)

// ErrorHandler is the echo fallback for errors no handler translated
// itself. Handlers normally answer with their own envelope; this catches
// routing errors and anything that escaped.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, ok := httpErr.Message.(string)
		if !ok {
			msg = http.StatusText(httpErr.Code)
		}
		_ = c.JSON(httpErr.Code, jsonres.Error("HTTP_ERROR", msg, nil))
		return
	}

	logger.Error("unhandled_request_error",
		"method", c.Request().Method,
		"path", c.Path(),
		"error", err,
	)
	_ = c.JSON(http.StatusInternalServerError, jsonres.Error(
		"INTERNAL_ERROR", "internal error", nil,
	))
}
