// Package apperr carries an HTTP status alongside pipeline errors so the
// entry point is the only place that maps failures to responses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindFetch          Kind = "fetch_error"
	KindUnexpected     Kind = "unexpected"
)

type Error struct {
	Kind   Kind
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Msg == "" {
		return e.Err.Error()
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid is raised before any outbound call when the request cannot be served.
func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidRequest, Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func Fetch(err error) *Error {
	return &Error{Kind: KindFetch, Status: http.StatusInternalServerError, Msg: "Failed to fetch or scrape URL", Err: err}
}

func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Status: http.StatusInternalServerError, Msg: "An unexpected error occurred", Err: err}
}

// StatusOf returns the status carried by err, or 500 when none was attached.
func StatusOf(err error) int {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// Message is the user-visible text for err. Unknown errors are wrapped the
// same way Unexpected would wrap them.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Error()
	}
	return Unexpected(err).Error()
}

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnexpected
}
