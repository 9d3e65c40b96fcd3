package httpclient

import (
	goerrors "errors"
	"net/http"

	"github.com/segal-ziv/smartbill/internal/errors"
)

// Error is returned for non-2xx upstream responses, keeping the status
// and raw body so callers can classify the failure.
type Error struct {
	*errors.InternalError
	StatusCode int
	Response   []byte
}

func (e *Error) Unwrap() error {
	return e.InternalError.Unwrap()
}

func (e *Error) Error() string {
	return e.InternalError.Error()
}

// Retryable reports whether the upstream failure is worth retrying.
// Rate limits and server errors are; other client errors are terminal.
func (e *Error) Retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

func NewError(statusCode int, response []byte) *Error {
	return &Error{
		InternalError: errors.New(errors.ErrCodeHTTPClient, "http client error"),
		StatusCode:    statusCode,
		Response:      response,
	}
}

// IsHTTPError extracts an upstream *Error from an error chain.
func IsHTTPError(err error) (*Error, bool) {
	var httpErr *Error
	if goerrors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}
