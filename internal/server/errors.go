package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-paramform/pkg/catalog"
	"github.com/goliatone/go-paramform/pkg/session"
)

// HTTPError is an error that knows its response status.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches a status code to an error.
type StatusError struct {
	Code int
	Err  error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor maps session and catalog errors to response codes. Anything
// else is a failed upstream fetch.
func statusFor(err error) int {
	var httpErr HTTPError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, catalog.ErrUnknownDataset):
		return http.StatusNotFound
	case errors.Is(err, session.ErrStale):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoDataset):
		return http.StatusPreconditionFailed
	case errors.Is(err, session.ErrRejected):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	http.Error(w, http.StatusText(code), code)
}
