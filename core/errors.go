package core

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
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

func (err ValidationError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	msgs := make([]string, 0, len(err.Fields))
	for _, fld := range err.Fields {
		msgs = append(msgs, fld.Field+": "+fld.Error)
	}
	return strings.Join(msgs, "; ")
}

func (err ValidationError) Unwrap() error {
	return err.Err
}

// NotFoundError reports a record missing from its table.
type NotFoundError struct {
	Entity string
	Field  string
	Value  interface{}
}

// NewNotFoundError returns a *NotFoundError for a record looked up by `field`, e.g. NewNotFoundError("Fee", "id", 3).
func NewNotFoundError(entity, field string, value interface{}) error {
	return &NotFoundError{Entity: entity, Field: field, Value: value}
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with %s: %v", err.Entity, err.Field, err.Value)
}

// IsNotFound tells whether err, or any error it wraps, is a *NotFoundError.
func IsNotFound(err error) bool {
	var nfErr *NotFoundError
	return errors.As(err, &nfErr)
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
