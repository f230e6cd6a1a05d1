package errors

import stderrors "errors"

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "speed must be between 1 and 10".
	Message string

	// Code (required) is the error code string, one of the ErrorCode values.
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message, code, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    code,
		Field:   field,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether err, or any error it wraps, carries code.
func ErrorCodeEquals(err error, code string) bool {
	return CodeOf(err) == code
}

// CodeOf returns the first code found in the error chain, empty when none.
func CodeOf(err error) string {
	for err != nil {
		switch e := err.(type) {
		case *ErrorTracer:
			if e.Code != "" {
				return e.Code
			}
		case *ErrorDetails:
			return e.Code
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
