// Package apperr defines the error taxonomy shared by the HTTP layer
// and the job pipeline.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrValidation indicates a bad request from the client.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Message
}

// ErrNotFound indicates the referenced resource does not exist. This is
// a permanent 404-type outcome, distinct from a transient store error.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrConflict indicates the request collides with current state, e.g. a
// duplicate job id or a start on a non-pending job.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	return e.Message
}

// ErrStore indicates a backing database or object store failure. Reads
// that fail this way are safe for the poller to retry.
type ErrStore struct {
	Op  string
	Err error
}

func (e *ErrStore) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *ErrStore) Unwrap() error { return e.Err }

// NotFound builds an ErrNotFound for the given resource and id.
func NotFound(resource, id string) error {
	return &ErrNotFound{Resource: resource, ID: id}
}

// IsNotFound reports whether err is an ErrNotFound anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	return errors.As(err, &nf)
}

// HTTPStatus returns the HTTP status code for an error.
func HTTPStatus(err error) int {
	var (
		validation *ErrValidation
		notFound   *ErrNotFound
		conflict   *ErrConflict
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
