package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"shopsense/domain"
	"shopsense/pkg/metrics"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// statusFor maps a client-visible error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// suggestOK writes the success envelope and records the request metrics.
func suggestOK(c echo.Context, feature string, start time.Time, result *domain.SuggestResult, cached bool) error {
	elapsed := time.Since(start)
	metrics.SuggestLatency.WithLabelValues(feature).Observe(elapsed.Seconds())
	metrics.SuggestRequests.WithLabelValues(feature, "success").Inc()

	return c.JSON(http.StatusOK, domain.SuggestResponse{
		Success:         true,
		Items:           result.Items,
		TotalFound:      result.TotalFound,
		AlgorithmsUsed:  result.AlgorithmsUsed,
		ExecutionTimeMs: elapsedMs(start),
		Cached:          cached,
	})
}

// suggestFail writes the error envelope. Callers always get a
// well-formed body with a stable error code.
func suggestFail(c echo.Context, feature string, start time.Time, err error) error {
	code := domain.ErrorCodeFor(err)
	metrics.SuggestRequests.WithLabelValues(feature, "error").Inc()

	msg := err.Error()
	if code == domain.CodeInternalError {
		// internals stay in the logs
		msg = "internal error"
	}

	return c.JSON(statusFor(code), domain.SuggestErrorResponse{
		Success:         false,
		ErrorCode:       code,
		Error:           msg,
		ExecutionTimeMs: elapsedMs(start),
	})
}
