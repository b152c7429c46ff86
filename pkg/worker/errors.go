package worker

import (
	"errors"
	"fmt"
)

// TransportError indicates the worker could not be reached or the request
// could not be issued.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("worker request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ResponseError indicates the worker answered with a body that could not be
// decoded as JSON.
type ResponseError struct {
	StatusCode int
	Err        error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("worker response not decodable (status %d): %v", e.StatusCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a worker transport failure.
func IsTransportError(err error) bool {
	var transportErr *TransportError

	return errors.As(err, &transportErr)
}

// IsResponseError reports whether err is a non-decodable worker response.
func IsResponseError(err error) bool {
	var responseErr *ResponseError

	return errors.As(err, &responseErr)
}
