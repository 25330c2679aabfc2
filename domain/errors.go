package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeInvalid            ErrorCode = "INVALID"
	ErrCodeConflict           ErrorCode = "CONFLICT"
	ErrCodeForbidden          ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeIllegalTransition  ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeInvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	ErrCodeInternal           ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Forbidden reports that the acting member lacks a capability.
func Forbidden(cap Capability) *Error {
	return NewError(ErrCodeForbidden, fmt.Sprintf("missing capability %s", cap))
}

// IllegalTransition reports a status change outside the allowed transition class.
func IllegalTransition(from, to TaskStatus) *Error {
	return NewError(ErrCodeIllegalTransition, fmt.Sprintf("illegal transition from %q to %q", from, to))
}

// InvariantViolation reports a mutation that would break a membership or task invariant.
func InvariantViolation(message string) *Error {
	return NewError(ErrCodeInvariantViolation, message)
}

// Invalid reports malformed input.
func Invalid(message string) *Error {
	return NewError(ErrCodeInvalid, message)
}

// Common domain errors.
var (
	ErrUserNotFound     = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrMemberNotFound   = NewError(ErrCodeNotFound, "member not found")
	ErrProjectNotFound  = NewError(ErrCodeNotFound, "project not found")
	ErrNotMember        = NewError(ErrCodeForbidden, "not a member of this project")
	ErrVersionConflict  = NewError(ErrCodeConflict, "record was modified concurrently")
	ErrLockHeld         = NewError(ErrCodeConflict, "lock is held by another process")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrDuplicateName    = NewError(ErrCodeInvalid, "task name already exists in project")
	ErrDuplicateMember  = NewError(ErrCodeInvalid, "user is already a member of the project")
	ErrOwnerImmutable   = InvariantViolation("the project owner role cannot be reassigned")
	ErrOwnerNotRemoval  = InvariantViolation("the project owner cannot be removed")
	ErrSecondOwner      = InvariantViolation("a project has exactly one owner")
	ErrManagerAssigned  = InvariantViolation("the project already has a manager")
	ErrProjectMismatch  = InvariantViolation("member belongs to a different project")
	ErrNonPositiveDelta = Invalid("logged minutes must be positive")
	ErrStartInPast      = Invalid("start date cannot be before today")

	ErrTimeSpentOverflow = Invalid("time spent would exceed the supported maximum")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// CodeOf returns the domain code carried by err, or ErrCodeInternal.
func CodeOf(err error) ErrorCode {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code
	}
	return ErrCodeInternal
}
