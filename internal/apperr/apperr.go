// Package apperr defines the error taxonomy shared by repositories and
// handlers, and centralizes the mapping to HTTP status codes so the
// handler layer stays free of error-inspection branches.
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrTooLarge      = errors.New("file too large")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Status maps an error chain to an HTTP status code. Unknown errors are
// treated as internal failures.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict), errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	case errors.Is(err, ErrTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether err maps to a 5xx response. Used to decide
// whether to log the underlying cause and hide it from the client.
func IsInternal(err error) bool {
	return Status(err) >= http.StatusInternalServerError
}
