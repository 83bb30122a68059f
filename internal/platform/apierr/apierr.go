package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes surfaced in the JSON error envelope.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeInvalidDocument = "invalid_document"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
	CodeInternal        = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(err error) *Error { return New(http.StatusBadRequest, CodeInvalidRequest, err) }
func NotFound(err error) *Error   { return New(http.StatusNotFound, CodeNotFound, err) }
func Conflict(err error) *Error   { return New(http.StatusConflict, CodeConflict, err) }
func Forbidden(err error) *Error  { return New(http.StatusForbidden, CodeForbidden, err) }

// From returns the *Error in err's chain, or wraps err as a 500.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
