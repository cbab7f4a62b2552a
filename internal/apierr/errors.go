// Package apierr defines the error taxonomy surfaced to callers and maps
// failed backend calls onto a single user-facing message.
package apierr

import (
	"errors"
	"fmt"
)

// Kind discriminates classified failures.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindNotFound       Kind = "not_found"
	KindRateLimited    Kind = "rate_limited"
	KindServerError    Kind = "server_error"
	KindHTTP           Kind = "http"
	KindNetwork        Kind = "network"
	KindRequest        Kind = "request"
	KindValidation     Kind = "validation"
)

// ValidationError reports bad caller input such as an empty symbol.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// APIError is a classified HTTP failure.
type APIError struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return MsgUnreachable }

func (e *NetworkError) Unwrap() error { return e.Err }

// RequestError means the request could not be constructed.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	if e.Err == nil || e.Err.Error() == "" {
		return MsgUnknown
	}
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// KindOf returns the classification of any error in the taxonomy, or ""
// for errors outside it.
func KindOf(err error) Kind {
	var apiErr *APIError
	var netErr *NetworkError
	var reqErr *RequestError
	var valErr *ValidationError
	switch {
	case errors.As(err, &valErr):
		return KindValidation
	case errors.As(err, &apiErr):
		return apiErr.Kind
	case errors.As(err, &netErr):
		return KindNetwork
	case errors.As(err, &reqErr):
		return KindRequest
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
