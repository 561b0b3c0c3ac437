package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrorRecordNotFound = errors.New("record not found")

var (
	// ErrAccountNotFound: the account does not exist, is deleted, or belongs to another owner.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidTransfer: same source/destination, or an internal transfer without destination.
	ErrInvalidTransfer     = errors.New("invalid transfer")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrIdempotencyConflict = errors.New("request with this idempotency key is already in progress")
	// ErrLedgerEventNotFound: no failed or dead event with that id for the owner.
	ErrLedgerEventNotFound = errors.New("ledger event not found")
)

// ValidationError is returned for malformed input before any store access.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// PersistenceError wraps a store failure raised inside an atomic unit.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persist wraps err as a PersistenceError unless it already carries a domain kind.
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsDomainError(err) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsDomainError reports whether err is one of the client-facing error kinds.
func IsDomainError(err error) bool {
	var ve *ValidationError
	return errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInvalidTransfer) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrCategoryNotFound) ||
		errors.Is(err, ErrIdempotencyConflict) ||
		errors.Is(err, ErrLedgerEventNotFound) ||
		errors.As(err, &ve)
}
