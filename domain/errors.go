package domain

import "errors"

// Client-visible error codes. Stable: dashboards and clients key on them.
const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeInternalError = "INTERNAL_ERROR"
)

var (
	// ErrInvalidInput rejects a request before the pipeline runs
	// (missing/invalid required parameter).
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound means the referenced primary entity does not exist.
	ErrNotFound = errors.New("not found")
)

// ErrorCodeFor maps an error to its client-visible code. Anything
// unrecognized is an internal error by definition.
func ErrorCodeFor(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternalError
	}
}
