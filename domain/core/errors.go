package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrNotFound covers missing patients, sessions and reports.
	ErrNotFound        = errors.New("resource not found")
	ErrPatientNotFound = fmt.Errorf("%w: patient", ErrNotFound)
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: report", ErrNotFound)

	// ErrConflict signals the one-open-session-per-patient invariant
	// was violated. Callers recover by reusing the open session.
	ErrConflict = errors.New("open session already exists")

	// ErrInvalidState signals an append or mutation on a closed session.
	ErrInvalidState = errors.New("session is closed")

	// ErrExternalService covers language-service failures and timeouts.
	// Always recoverable with a localized stock reply.
	ErrExternalService = errors.New("external service failure")

	// ErrPersistence covers checkpoint/flush failures. Logged and retried,
	// never surfaced to the end user.
	ErrPersistence = errors.New("persistence failure")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewConflictError(patientID PatientID, openSession SessionID) error {
	return fmt.Errorf("%w: patient %s has open session %s", ErrConflict, patientID, openSession)
}

func NewInvalidStateError(sessionID SessionID) error {
	return fmt.Errorf("%w: session %s", ErrInvalidState, sessionID)
}

func NewExternalServiceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalService, op, err)
}

func NewPersistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsInvalidStateError(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

func IsExternalServiceError(err error) bool {
	return errors.Is(err, ErrExternalService)
}

func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
