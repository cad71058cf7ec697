package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountNotFound is returned when the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrLedgerNotFound is returned when the referenced ledger does not exist.
	ErrLedgerNotFound = errors.New("ledger not found")

	// ErrTransactionNotFound is returned when the referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// ValidationError describes a posting input that was rejected before any
// state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
