package provider

import (
	"errors"
	"fmt"
)

// ErrorCode classifies record store failures.
type ErrorCode string

const (
	// ErrorCodePermissionDenied indicates the caller lacks a read or write grant.
	ErrorCodePermissionDenied ErrorCode = "permission_denied"
	// ErrorCodeUnavailable indicates the store cannot be reached.
	ErrorCodeUnavailable ErrorCode = "unavailable"
	// ErrorCodeInvalid indicates a malformed query, batch, or URI.
	ErrorCodeInvalid ErrorCode = "invalid"
	// ErrorCodeStore indicates a storage failure while executing a request.
	ErrorCodeStore ErrorCode = "store"
)

// Error is a typed record store error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error returns the formatted error message.
func (e *Error) Error() string {
	if e == nil {
		return "provider: <nil>"
	}
	msg := fmt.Sprintf("provider: %s", e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrPermissionDenied = &Error{Code: ErrorCodePermissionDenied}
	ErrUnavailable      = &Error{Code: ErrorCodeUnavailable}
	ErrInvalid          = &Error{Code: ErrorCodeInvalid}
	ErrStore            = &Error{Code: ErrorCodeStore}
)

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Code
	}
	return ""
}
