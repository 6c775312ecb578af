package services

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mediation_flow_go/repository"
)

// ErrorKind classifies a service failure
type ErrorKind string

const (
	KindValidation           ErrorKind = "VALIDATION_ERROR"
	KindNotFound             ErrorKind = "NOT_FOUND"
	KindCapacityExceeded     ErrorKind = "CAPACITY_EXCEEDED"
	KindReferentialIntegrity ErrorKind = "REFERENTIAL_INTEGRITY"
	KindInternal             ErrorKind = "INTERNAL_ERROR"
)

// Sentinels for errors.Is; they match any *Error of the same kind
var (
	ErrValidation           = &Error{Kind: KindValidation}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrCapacityExceeded     = &Error{Kind: KindCapacityExceeded}
	ErrReferentialIntegrity = &Error{Kind: KindReferentialIntegrity}
	ErrInternal             = &Error{Kind: KindInternal}
)

const validationDelimiter = "; "

// Error is the single structured failure every service operation returns
type Error struct {
	Kind    ErrorKind
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinels by kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// HTTPStatus maps the error kind to a status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindReferentialIntegrity:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCapacityExceeded:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError reports every violated rule at once
func NewValidationError(messages ...string) *Error {
	return &Error{
		Kind:    KindValidation,
		Message: strings.Join(messages, validationDelimiter),
		Details: messages,
	}
}

// NewNotFoundError reports a missing or soft-deleted record
func NewNotFoundError(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", entity, id),
	}
}

// NewCapacityExceededError reports a mediator at the workload cap
func NewCapacityExceededError(mediatorID string, active int64, capacity int) *Error {
	return &Error{
		Kind:    KindCapacityExceeded,
		Message: fmt.Sprintf("Mediator %s already has %d active cases (maximum %d)", mediatorID, active, capacity),
	}
}

// NewReferentialIntegrityError reports a reference that does not resolve
func NewReferentialIntegrityError(entity, id string) *Error {
	return &Error{
		Kind:    KindReferentialIntegrity,
		Message: fmt.Sprintf("%s does not exist: %s", entity, id),
	}
}

// NewInternalError wraps a persistence failure, preserving the cause
func NewInternalError(operation string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: "failed to " + operation,
		Err:     err,
	}
}

// storeError converts a repository error into a service error
func storeError(err error, entity, id, operation string) error {
	if err == nil {
		return nil
	}
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return NewNotFoundError(entity, id)
	}
	return NewInternalError(operation, err)
}

// validationErrors collects rule violations in order
type validationErrors []string

func (v *validationErrors) add(format string, args ...interface{}) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v validationErrors) err() error {
	if len(v) == 0 {
		return nil
	}
	return NewValidationError(v...)
}
