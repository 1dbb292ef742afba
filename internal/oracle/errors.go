package oracle

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedResponse indicates the provider answered with output that does
	// not match the requested shape.
	ErrMalformedResponse = errors.New("malformed oracle response")
	// ErrEmptyResponse indicates the provider returned no content.
	ErrEmptyResponse = errors.New("empty oracle response")
	// ErrInvalidRequest indicates a request that cannot be sent.
	ErrInvalidRequest = errors.New("invalid oracle request")
	// ErrUnknownProvider indicates an unsupported provider name.
	ErrUnknownProvider = errors.New("unknown oracle provider")
)

// ResponseError carries the raw provider output alongside the failure so
// callers can record what the model actually said.
type ResponseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

// RawResponse returns the raw provider output attached to err, if any.
func RawResponse(err error) string {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.Raw
	}
	return ""
}
