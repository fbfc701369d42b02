package errs

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation Code = "VALIDATION_ERROR"
	CodeNotFound   Code = "NOT_FOUND"
	CodeQuery      Code = "QUERY_ERROR"
)

// Error carries a stable code for transport mapping alongside the wrapped
// cause. Data-shape problems (unparseable numerics) are never represented
// here: those coerce to zero at the normalization boundary instead.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation rejects bad caller input before any I/O happens.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Query wraps a backing-store failure. The cause is preserved so callers
// can distinguish "no matches" from "query failed".
func Query(op string, err error) *Error {
	return &Error{Code: CodeQuery, Message: op, Err: err}
}

func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

func IsValidation(err error) bool { return HasCode(err, CodeValidation) }
func IsNotFound(err error) bool   { return HasCode(err, CodeNotFound) }
func IsQuery(err error) bool      { return HasCode(err, CodeQuery) }
