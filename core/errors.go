package core

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailDelivery       = errors.New("email delivery failed")
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

// NewFieldError is a shortcut for a ValidationError on a single field.
func NewFieldError(field, msg string) error {
	return &ValidationError{Err: errors.New(msg), Fields: []FieldError{{Field: field, Error: msg}}}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

// IsValidationError reports whether err is a ValidationError or failed struct validation.
func IsValidationError(err error) bool {
	switch errors.Cause(err).(type) {
	case *ValidationError, validator.ValidationErrors:
		return true
	}
	return false
}

// StoreOp tells whether a StoreError happened while reading or writing.
type StoreOp string

const (
	StoreRead  StoreOp = "read"
	StoreWrite StoreOp = "write"
)

// StoreError wraps a failure of the underlying document store (transport, permission...).
type StoreError struct {
	Op         StoreOp
	Collection string
	Err        error
}

func NewStoreError(op StoreOp, collection string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Collection: collection, Err: err}
}

func (err *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", err.Op, err.Collection, err.Err)
}

func (err *StoreError) Unwrap() error { return err.Err }

func IsStoreWrite(err error) bool {
	sErr, ok := errors.Cause(err).(*StoreError)
	return ok && sErr.Op == StoreWrite
}

func IsStoreRead(err error) bool {
	sErr, ok := errors.Cause(err).(*StoreError)
	return ok && sErr.Op == StoreRead
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
