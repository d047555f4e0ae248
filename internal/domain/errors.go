package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies service failures for callers. Everything except
// KindStorage is a recoverable business-rule violation.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindInvalidTransition
	KindConflict
	KindValidation
	KindStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation_error"
	case KindStorage:
		return "storage_error"
	}
	return "unknown"
}

// Error is the structured failure surfaced to callers.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches two domain errors by kind, so callers can test
// errors.Is(err, domain.ErrConflict) against any conflict.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// Kind sentinels for errors.Is checks.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrValidation        = &Error{Kind: KindValidation}
	ErrStorage           = &Error{Kind: KindStorage}
)

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func InvalidTransitionf(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// StorageErr wraps a fatal storage failure; the enclosing transaction has
// been rolled back by the time it surfaces.
func StorageErr(op string, err error) *Error {
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}
