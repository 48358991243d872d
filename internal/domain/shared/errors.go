// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages. This package has zero external
// dependencies beyond the decimal arithmetic library.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Date errors. A date that does not parse or does not exist on the
	// calendar is rejected outright - never rounded to the nearest valid day.
	ErrInvalidDate = errors.New("invalid calendar date")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrTimeout            = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "billing", "reminder"
	Op      string // Operation that failed, e.g., "ComputeLiability"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound       = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists  = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrMissingAdmissionDate  = NewDomainError("student", "Validate", ErrInvalidDate, "admission date is required")
	ErrCancellationTooEarly  = NewDomainError("student", "Validate", ErrInvalidDate, "cancellation date precedes admission date")
	ErrStudentAlreadyLeft    = NewDomainError("student", "Cancel", ErrStateTransition, "student is already cancelled")
	ErrInvalidStudentID      = NewDomainError("student", "Validate", ErrInvalidID, "invalid student ID")
	ErrInvalidStudentName    = NewDomainError("student", "Validate", ErrInvalidInput, "invalid display name")
	ErrNegativeFee           = NewDomainError("student", "Validate", ErrNegativeValue, "monthly fee cannot be negative; use zero for a waiver")
	ErrStudentNotBillable    = NewDomainError("student", "UpdateFee", ErrStateTransition, "cancelled student is not billable")
	ErrMissingContactDetails = NewDomainError("student", "Contact", ErrEmptyValue, "student has no contact phone")
)

// Billing domain errors
var (
	ErrPaymentNotFound          = NewDomainError("billing", "Find", ErrNotFound, "payment record not found")
	ErrInvalidPaidThrough       = NewDomainError("billing", "Validate", ErrInvalidDate, "invalid paid-through date")
	ErrMonthsToClearOutOfRange  = NewDomainError("billing", "PlanPaidThrough", ErrValueOutOfRange, "months to clear must be at least 1")
	ErrLiabilityBeforeAdmission = NewDomainError("billing", "ComputeLiability", ErrInvalidDate, "paid-through date precedes admission date")
)

// Reminder domain errors
var (
	ErrInvalidReminderWindow = NewDomainError("reminder", "Validate", ErrInvalidInput, "invalid reminder window")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsExternalService checks if the error is from an external service.
func IsExternalService(err error) bool {
	return errors.Is(err, ErrExternalService) ||
		errors.Is(err, ErrServiceUnavailable) ||
		errors.Is(err, ErrTimeout)
}
