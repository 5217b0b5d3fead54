package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of a valuation run.
type ErrorKind string

const (
	KindDataUnavailable ErrorKind = "DATA_UNAVAILABLE"
	KindValidation      ErrorKind = "VALIDATION"
	KindMathDomain      ErrorKind = "MATH_DOMAIN"
	KindUnknownRating   ErrorKind = "UNKNOWN_RATING"
)

// Sentinels for errors.Is matching by kind.
var (
	ErrDataUnavailable = &Error{Kind: KindDataUnavailable}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrMathDomain      = &Error{Kind: KindMathDomain}
)

// Error is a fatal condition that aborts the run.
type Error struct {
	Kind     ErrorKind
	Field    string
	Expected string
	Actual   string
	Msg      string
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Msg)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	case e.Expected != "":
		return fmt.Sprintf("%s: %s: expected %s, got %s", e.Kind, e.Field, e.Expected, e.Actual)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	}
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of err, or "" if it is not an *Error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NewDataUnavailable(field, msg string) error {
	return &Error{Kind: KindDataUnavailable, Field: field, Msg: msg}
}

func NewValidationError(field, expected string, actual any) error {
	return &Error{Kind: KindValidation, Field: field, Expected: expected, Actual: fmt.Sprint(actual)}
}

func NewValidationMsg(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func NewMathDomainError(field, msg string) error {
	return &Error{Kind: KindMathDomain, Field: field, Msg: msg}
}

// Warning is a non-fatal condition reported alongside a result.
type Warning struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}
