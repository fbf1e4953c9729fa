package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/phrazzld/tactics-srs/internal/api/shared"
	"github.com/phrazzld/tactics-srs/internal/domain"
	"github.com/phrazzld/tactics-srs/internal/service/practice"
	"github.com/phrazzld/tactics-srs/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, practice.ErrInvalidInput),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, store.ErrTransactionFailed):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return "An unexpected error occurred"
	case errors.Is(err, practice.ErrInvalidInput):
		return practice.ErrInvalidInput.Error()
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request"
	case errors.Is(err, store.ErrNotFound):
		return "not found"
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, store.ErrTransactionFailed):
		return "Database busy, try again"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the error response for err. The message comes from
// GetSafeErrorMessage, except that defaultMsg replaces the generic message
// of unclassified errors when it is not empty.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	status := MapErrorToStatusCode(err)
	msg := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && defaultMsg != "" {
		msg = defaultMsg
	}
	shared.RespondWithErrorAndLog(w, r, status, msg, err)
}
