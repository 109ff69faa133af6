package service

import (
	"errors"
	"fmt"

	"studio-schedule-bot/internal/models"
)

// Stable error categories. Callers branch with errors.Is / errors.As; the
// bot layer maps them to user-facing messages.
var (
	// ErrNotFound covers unknown slot/credit/request ids. No side effects
	// have occurred when it is returned.
	ErrNotFound = errors.New("not found")

	// ErrCreditExhausted: the credit has no available units left.
	ErrCreditExhausted = errors.New("credit exhausted")

	// ErrCreditExpired: the credit's validity date has been reached. Kept
	// apart from exhaustion so callers can message the difference.
	ErrCreditExpired = errors.New("credit expired")

	// ErrScopeMismatch: the credit is scoped to a modality the booking
	// does not belong to.
	ErrScopeMismatch = errors.New("credit modality scope mismatch")
)

// ValidationError rejects an operation before any mutation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// StateConflictError signals an operation that is legal in shape but not in
// the entity's current state (deciding a non-pending request, resuming
// over an occupied seat). It carries enough context for the caller to pick
// the next action instead of silently coercing to success.
type StateConflictError struct {
	Msg string

	// Substitutes is populated on seat conflicts: the active enrollments
	// currently occupying the paused student's seat.
	Substitutes []*models.Enrollment

	// CurrentStatus is populated on request state-machine violations.
	CurrentStatus string
}

func (e *StateConflictError) Error() string {
	return e.Msg
}

// TransactionError wraps a composed-transaction failure after rollback.
// Partial state is guaranteed to have been undone; the caller may retry.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s rolled back: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
