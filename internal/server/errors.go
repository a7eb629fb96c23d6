// Package server provides the HTTP JSON API over parsing, scoring, matching
// and tailoring.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/tailoring"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a stored record does not exist
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ErrQuotaExceeded indicates the caller has no tailoring allowance left
type ErrQuotaExceeded struct {
	UserID string
}

func (e *ErrQuotaExceeded) Error() string {
	return fmt.Sprintf("tailoring allowance exhausted for user %s", e.UserID)
}

// ErrStorageDisabled is returned by record lookups when no database is configured
var ErrStorageDisabled = errors.New("storage is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrNotFound
		quota      *ErrQuotaExceeded
		input      *tailoring.InputError
	)
	switch {
	case errors.As(err, &validation), errors.As(err, &input):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &quota):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrStorageDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
