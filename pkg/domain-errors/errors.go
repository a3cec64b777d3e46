// Package domainerrors carries coded errors from the engine to the transport layer.
// Services attach a Code; httputil.WriteError maps the Code to an HTTP status.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for clients.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeSchema     Code = "schema_error"
	CodeTimeout    Code = "timeout"
	CodeInternal   Code = "internal_error"
)

// Error is a coded error with a client-safe message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the first coded error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// HTTPStatus maps a code onto a response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeSchema:
		return http.StatusBadRequest
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
