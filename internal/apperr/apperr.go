// Package apperr holds the error values that are shown to users as flash messages.
package apperr

import "errors"

// ValidationError is a user-correctable failure. Message is the exact text
// rendered back to the user; Code is stable for logs and metrics.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func Validation(code, message string) *ValidationError {
	return &ValidationError{Code: code, Message: message}
}

// AsValidation reports whether err wraps a *ValidationError and returns it.
func AsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
