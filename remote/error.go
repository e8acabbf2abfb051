package remote

import (
	"fmt"
	"net/http"
)

// Error represents a non-2xx response of the auth service
type Error struct {
	Operation   string
	StatusCode  int
	Status      string
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Description != "" {
		return e.Description
	}
	if e.Status != "" {
		return e.Status
	}
	return http.StatusText(e.StatusCode)
}

// NewError creates an error with a status code and description
func NewError(operation string, statusCode int, code, description string) *Error {
	return &Error{
		Operation:   operation,
		StatusCode:  statusCode,
		Status:      http.StatusText(statusCode),
		Code:        code,
		Description: description,
	}
}

// TransportError represents a failure to reach the auth service
type TransportError struct {
	Operation string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%v: auth service unreachable: %v", e.Operation, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
