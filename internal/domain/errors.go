package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Application error codes
const (
	EINVALID   = "invalid"    // Invalid input or validation failure
	ENOTFOUND  = "not_found"  // Resource not found
	ECONFLICT  = "conflict"   // Resource conflict (stale version, illegal transition)
	ERATELIMIT = "rate_limit" // Rate limit exceeded
	EINTERNAL  = "internal"   // Internal server error
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "workorder.complete")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
// The code of a wrapped engine error is preserved by ErrorCode.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var coded codedError
	if errors.As(err, &coded) {
		return coded.code()
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var coded codedError
	if errors.As(err, &coded) {
		return coded.Error()
	}
	var e *Error
	if errors.As(err, &e) {
		// For internal errors, return generic message
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s with ID %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// RateLimit creates a rate limit error.
func RateLimit(op string) *Error {
	return &Error{
		Code:    ERATELIMIT,
		Op:      op,
		Message: "Too many requests. Please try again later.",
	}
}

// =============================================================================
// Engine Errors
// =============================================================================

// codedError is implemented by the engine's typed errors so that callers
// can map them without knowing every concrete type.
type codedError interface {
	error
	code() string
}

// InvalidItemError is returned when a checklist item id is not part of the session.
type InvalidItemError struct {
	ItemID string
}

func (e *InvalidItemError) Error() string {
	return fmt.Sprintf("checklist item %q is not part of this inspection", e.ItemID)
}

func (e *InvalidItemError) code() string { return EINVALID }

// IncompleteRequiredItemsError is returned when a session is submitted while
// required items are still not-checked. ItemIDs lists them in checklist order.
type IncompleteRequiredItemsError struct {
	ItemIDs []string
}

func (e *IncompleteRequiredItemsError) Error() string {
	return fmt.Sprintf("required checklist items not checked: %s", strings.Join(e.ItemIDs, ", "))
}

func (e *IncompleteRequiredItemsError) code() string { return EINVALID }

// MissingNextDueDateError is returned when a periodic session is submitted
// without a next inspection date strictly after today.
type MissingNextDueDateError struct {
	SessionID string
}

func (e *MissingNextDueDateError) Error() string {
	return "next inspection date is required and must be after today"
}

func (e *MissingNextDueDateError) code() string { return EINVALID }

// InvalidTransitionError is returned when a status change is not allowed
// from the entity's current status.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition %s from %s to %s", e.Entity, e.From, e.To)
}

func (e *InvalidTransitionError) code() string { return ECONFLICT }

// IncompleteItemIDs returns the offending item ids when err is (or wraps)
// an IncompleteRequiredItemsError.
func IncompleteItemIDs(err error) []string {
	var ie *IncompleteRequiredItemsError
	if errors.As(err, &ie) {
		return ie.ItemIDs
	}
	return nil
}
