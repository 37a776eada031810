// Package server provides the HTTP REST API for the trip guide service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/trip-guide/internal/job"
	"github.com/jonathan/trip-guide/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrGuideNotReady indicates a generation run is still in flight for the trip
type ErrGuideNotReady struct {
	TripID string
}

func (e *ErrGuideNotReady) Error() string {
	return fmt.Sprintf("guide generation still running for trip: %s", e.TripID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validation *ErrValidation
	var notReady *ErrGuideNotReady
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notReady):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound), errors.Is(err, job.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
