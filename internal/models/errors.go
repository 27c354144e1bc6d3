package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies domain errors so transports can map them consistently
type ErrorKind string

const (
	KindNotFound              ErrorKind = "not_found"
	KindAccessDenied          ErrorKind = "access_denied"
	KindInvalidTransition     ErrorKind = "invalid_transition"
	KindValidationFailed      ErrorKind = "validation_failed"
	KindResourceConflict      ErrorKind = "resource_conflict"
	KindDependencyUnavailable ErrorKind = "dependency_unavailable"
	KindInternal              ErrorKind = "internal"
)

// Error is the domain error returned by lifecycle operations
type Error struct {
	Kind    ErrorKind
	Field   string // offending field, if any
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports a missing entity
func NotFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// AccessDenied reports a failed role or ownership check
func AccessDenied(message string) *Error {
	return &Error{Kind: KindAccessDenied, Message: message}
}

// InvalidTransition reports a status or field change not allowed in the current state
func InvalidTransition(field, message string) *Error {
	return &Error{Kind: KindInvalidTransition, Field: field, Message: message}
}

// ValidationFailed reports a numeric or range violation
func ValidationFailed(field, message string) *Error {
	return &Error{Kind: KindValidationFailed, Field: field, Message: message}
}

// ResourceConflict reports a contended vehicle reservation
func ResourceConflict(message string) *Error {
	return &Error{Kind: KindResourceConflict, Message: message}
}

// DependencyUnavailable wraps a collaborator failure
func DependencyUnavailable(dependency string, err error) *Error {
	return &Error{Kind: KindDependencyUnavailable, Message: dependency + " unavailable", Err: err}
}

// KindOf returns the kind of a domain error, or KindInternal for anything else
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a domain error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
