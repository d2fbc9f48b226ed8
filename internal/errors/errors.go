// Package errors provides the internal error type used across the codebase.
// It is conventionally imported as ierr. Errors carry a machine-readable mark
// (one of the sentinel Err* values), a human-facing hint, and optional
// reportable details that are safe to return to API callers.
package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors. Every error leaving a repository or service is marked with
// exactly one of these; callers branch with errors.Is via the helpers below.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("resource not found")
	ErrAlreadyExists    = errors.New("resource already exists")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrDatabase         = errors.New("database error")
	ErrInternal         = errors.New("internal error")
)

// InternalError is the concrete error type produced by the builder.
type InternalError struct {
	cause             error
	mark              error
	hint              string
	reportableDetails map[string]interface{}
}

func (e *InternalError) Error() string {
	return e.cause.Error()
}

func (e *InternalError) Unwrap() error {
	return e.cause
}

// Is lets errors.Is match against the sentinel the error was marked with.
func (e *InternalError) Is(target error) bool {
	return errors.Is(e.mark, target) || errors.Is(e.cause, target)
}

// Hint returns the human-facing hint, if any.
func (e *InternalError) Hint() string {
	return e.hint
}

// ReportableDetails returns details safe to expose to API callers.
func (e *InternalError) ReportableDetails() map[string]interface{} {
	return e.reportableDetails
}

// Builder assembles an InternalError fluently; Mark terminates the chain.
type Builder struct {
	err *InternalError
}

// NewError starts a builder from a new error message.
func NewError(message string) *Builder {
	return &Builder{err: &InternalError{cause: errors.New(message)}}
}

// NewErrorf starts a builder from a formatted error message.
func NewErrorf(format string, args ...interface{}) *Builder {
	return &Builder{err: &InternalError{cause: errors.Newf(format, args...)}}
}

// WithError starts a builder wrapping an existing error.
func WithError(err error) *Builder {
	if err == nil {
		err = errors.New("unknown error")
	}
	return &Builder{err: &InternalError{cause: err}}
}

func (b *Builder) WithHint(hint string) *Builder {
	b.err.hint = hint
	return b
}

func (b *Builder) WithHintf(format string, args ...interface{}) *Builder {
	b.err.hint = errors.Newf(format, args...).Error()
	return b
}

func (b *Builder) WithReportableDetails(details map[string]interface{}) *Builder {
	b.err.reportableDetails = details
	return b
}

// WithMessage wraps the current cause with an additional message.
func (b *Builder) WithMessage(message string) *Builder {
	b.err.cause = errors.WithMessage(b.err.cause, message)
	return b
}

// Mark tags the error with a sentinel and returns it. This is always the
// last call in the chain.
func (b *Builder) Mark(sentinel error) error {
	b.err.mark = sentinel
	return b.err
}

func IsValidation(err error) bool       { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsAlreadyExists(err error) bool    { return errors.Is(err, ErrAlreadyExists) }
func IsInvalidOperation(err error) bool { return errors.Is(err, ErrInvalidOperation) }
func IsDatabase(err error) bool         { return errors.Is(err, ErrDatabase) }
