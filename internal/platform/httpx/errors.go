// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"errors"
	"net/http"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrDuplicate  = errors.New("duplicate entry")
	ErrValidation = errors.New("validation failed")

	// Authorization taxonomy. Unauthenticated and SessionBlocked both map to
	// 401 but carry distinct titles so clients can tell re-login from refresh.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionBlocked  = errors.New("session superseded")
	ErrForbidden       = errors.New("forbidden")
)

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicate):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrSessionBlocked):
		Problem(w, http.StatusUnauthorized, "Session Superseded", err.Error())
	case errors.Is(err, ErrUnauthenticated):
		Problem(w, http.StatusUnauthorized, "Unauthenticated", err.Error())
	case errors.Is(err, ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		// Storage transients and everything unclassified. Never downgraded
		// to an authorization failure.
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
