package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel kinds shared by data sources, services and handlers. Wrap them
// with the constructors below and test with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")

	// ErrReadOnly rejects writes against the offline project catalog
	ErrReadOnly = errors.New("read-only data source")

	// ErrUnavailable marks an optional integration that is not configured
	ErrUnavailable = errors.New("unavailable")
)

// permanent kinds never succeed on a retry
var permanent = []error{ErrNotFound, ErrInvalidInput, ErrUnauthorized, ErrConflict, ErrReadOnly}

func NotFoundError(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

func InvalidInputError(field, reason string) error {
	return fmt.Errorf("%s: %s: %w", field, reason, ErrInvalidInput)
}

func ConflictError(resource string) error {
	return fmt.Errorf("%s: %w", resource, ErrConflict)
}

// ReadOnlyError names the rejected operation
func ReadOnlyError(operation string) error {
	return fmt.Errorf("%s: %w", operation, ErrReadOnly)
}

// UnavailableError names the missing integration
func UnavailableError(dependency string) error {
	return fmt.Errorf("%s %w", dependency, ErrUnavailable)
}

// IsPermanent reports whether err carries a kind that retrying cannot fix
func IsPermanent(err error) bool {
	for _, kind := range permanent {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// HTTPStatus maps an error kind to the response status. Writes against the
// read-only catalog are a conflict with the current server state.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict), errors.Is(err, ErrReadOnly):
		return http.StatusConflict
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
