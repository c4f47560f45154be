// Package result defines the ServiceResult tagged union every service
// operation returns, plus the classification of raw errors into it.
package result

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Status tags the outcome variant of a service operation.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusNotFound        Status = "not_found"
	StatusValidationError Status = "validation_error"
	StatusBusinessError   Status = "business_error"
	StatusSystemError     Status = "system_error"
)

// Code identifies a business or system error condition. Codes are
// string-based for debuggability and natural JSON serialization.
type Code string

const (
	CodeAccountNotFound        Code = "ACCOUNT_NOT_FOUND"
	CodeAccountNotActive       Code = "ACCOUNT_NOT_ACTIVE"
	CodeInvalidAccountType     Code = "INVALID_ACCOUNT_TYPE"
	CodeSelfReference          Code = "SELF_REFERENCE"
	CodeDuplicate              Code = "DUPLICATE"
	CodeDataIntegrityViolation Code = "DATA_INTEGRITY_VIOLATION"
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeMissingParameter       Code = "MISSING_PARAMETER"
	CodePayloadTooLarge        Code = "PAYLOAD_TOO_LARGE"
	CodeTimeout                Code = "TIMEOUT"
	CodeUnavailable            Code = "SERVICE_UNAVAILABLE"
	CodeInternal               Code = "INTERNAL_ERROR"
)

// ErrUnavailable marks failures where the downstream dependency refused the
// call outright (open circuit breaker, exhausted pool). The resilience layer
// wraps breaker errors with it so classification lands on SystemError with
// CodeUnavailable.
var ErrUnavailable = errors.New("service unavailable")

// BusinessError is a rule violation raised by a service: the request was
// well-formed but the domain forbids it.
type BusinessError struct {
	Message string
	Code    Code
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewBusinessError builds a BusinessError value for use with errors.As.
func NewBusinessError(code Code, message string) *BusinessError {
	return &BusinessError{Message: message, Code: code}
}

// ServiceResult is the outcome of a service operation: exactly one of
// Success, NotFound, ValidationError, BusinessError or SystemError.
type ServiceResult[T any] struct {
	status      Status
	data        T
	message     string
	code        Code
	fieldErrors core.ValidationErrors
	err         error
}

// Success wraps data in a successful result.
func Success[T any](data T) ServiceResult[T] {
	return ServiceResult[T]{status: StatusSuccess, data: data}
}

// NotFound reports that the requested entity does not exist.
func NotFound[T any](message string) ServiceResult[T] {
	return ServiceResult[T]{status: StatusNotFound, message: message}
}

// Validation reports field-level validation failures.
func Validation[T any](errs core.ValidationErrors) ServiceResult[T] {
	return ServiceResult[T]{status: StatusValidationError, message: "validation failed", fieldErrors: errs}
}

// Business reports a domain-rule violation.
func Business[T any](code Code, message string) ServiceResult[T] {
	return ServiceResult[T]{status: StatusBusinessError, message: message, code: code}
}

// System reports an infrastructure failure.
func System[T any](err error) ServiceResult[T] {
	code := CodeInternal
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		code = CodeTimeout
	case errors.Is(err, ErrUnavailable):
		code = CodeUnavailable
	}
	return ServiceResult[T]{status: StatusSystemError, message: err.Error(), code: code, err: err}
}

func (r ServiceResult[T]) Status() Status  { return r.status }
func (r ServiceResult[T]) IsSuccess() bool { return r.status == StatusSuccess }

// Data returns the payload; meaningful only when IsSuccess reports true.
func (r ServiceResult[T]) Data() T { return r.data }

func (r ServiceResult[T]) Message() string { return r.message }
func (r ServiceResult[T]) Code() Code      { return r.code }

// FieldErrors returns the per-field messages of a ValidationError result.
func (r ServiceResult[T]) FieldErrors() core.ValidationErrors { return r.fieldErrors }

// Err returns the underlying error of a SystemError result.
func (r ServiceResult[T]) Err() error { return r.err }

// Classify maps a raw error from the repository/resilience layers into the
// taxonomy. nil input is a programmer error and classifies as internal.
func Classify[T any](err error) ServiceResult[T] {
	if err == nil {
		return System[T](errors.New("classify called with nil error"))
	}

	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		return Validation[T](verrs)
	}

	var berr *BusinessError
	if errors.As(err, &berr) {
		return Business[T](berr.Code, berr.Message)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return NotFound[T]("record not found")
	}

	if IsConstraintViolation(err) {
		return Business[T](CodeDataIntegrityViolation, err.Error())
	}

	return System[T](err)
}

// IsConstraintViolation sniffs sqlite constraint failures. The modernc driver
// reports them as plain errors, so string matching is the only hook.
func IsConstraintViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "CHECK constraint failed") ||
		strings.Contains(msg, "constraint violation")
}

// Map converts a ServiceResult[T] into a ServiceResult[U], applying fn to the
// payload on success and carrying every other variant through unchanged.
func Map[T, U any](r ServiceResult[T], fn func(T) U) ServiceResult[U] {
	if r.status == StatusSuccess {
		return Success(fn(r.data))
	}
	return ServiceResult[U]{
		status:      r.status,
		message:     r.message,
		code:        r.code,
		fieldErrors: r.fieldErrors,
		err:         r.err,
	}
}
