package errors

import "fmt"

// Error codes attached to AppError values.
const (
	CodeConfigInvalid = "CONFIG_INVALID"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError is an error with a stable machine-readable code. The code survives
// wrapping so callers can branch on it regardless of how much context was
// layered on top.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// New builds an AppError with no cause.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap layers context on err, preserving an existing AppError code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	code := CodeInternalError
	if app, ok := err.(*AppError); ok {
		code = app.Code
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// ConfigInvalid reports a configuration problem found at startup.
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}
