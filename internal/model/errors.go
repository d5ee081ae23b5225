package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds, handlers map them to HTTP status codes.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnprocessable   = errors.New("unprocessable")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrCustomerNotFound   = newError(ErrNotFound, "customer not found")
	ErrCustomerInactive   = newError(ErrNotFound, "customer not found or inactive")
	ErrBillNotFound       = newError(ErrNotFound, "bill not found")
	ErrNoUnpaidBill       = newError(ErrNotFound, "no unpaid bill found for this customer")
	ErrPaymentNotFound    = newError(ErrNotFound, "payment not found")
	ErrTariffNotFound     = newError(ErrNotFound, "tariff not found")
	ErrUserNotFound       = newError(ErrNotFound, "user not found")
	ErrBillAlreadyPaid    = newError(ErrConflict, "bill is already paid")
	ErrPaymentInProgress  = newError(ErrConflict, "a payment for this customer is already in progress")
	ErrBillNotPayable     = newError(ErrUnprocessable, "bill has no recorded usage yet")
	ErrCustomerNotActive  = newError(ErrUnprocessable, "customer is inactive")
	ErrInvalidCredentials = newError(ErrUnauthenticated, "invalid email or password")
	ErrSessionExpired     = newError(ErrUnauthenticated, "session is invalid or has expired")
)

// ValidationError carries per field messages, keyed by the JSON field name.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// FieldError is a shortcut for a single failing field.
func FieldError(field, msg string) *ValidationError {
	ve := NewValidationError()
	ve.Add(field, msg)
	return ve
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// Merge copies other's fields under prefix, e.g. "bills.2.".
func (e *ValidationError) Merge(prefix string, other *ValidationError) {
	if other == nil {
		return
	}
	for f, msgs := range other.Fields {
		for _, m := range msgs {
			e.Add(prefix+f, m)
		}
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Count is the number of failing fields.
func (e *ValidationError) Count() int {
	return len(e.Fields)
}

// Err returns nil when nothing failed so callers can `return ve.Err()`.
func (e *ValidationError) Err() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ImportError reports the first business rule failure of a bulk import.
// Row is the spreadsheet row, the header being row 1.
type ImportError struct {
	Row    int
	Reason string
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// ImportRow converts a zero based item index into its spreadsheet row.
func ImportRow(index int) int {
	return index + 2
}
