// Package apperror classifies pipeline failures so callers can decide how to
// surface them. Every class is recoverable: the application stays usable.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	// KindPermission covers camera access denied, no device, no camera support.
	KindPermission Kind = "permission"
	// KindValidation covers oversized or non-image input.
	KindValidation Kind = "validation"
	// KindService covers failed or malformed AI service round-trips.
	KindService Kind = "service"
	// KindPersistence covers storage that is unavailable or corrupt.
	KindPersistence Kind = "persistence"
	// KindBusy is returned when a run is already in flight.
	KindBusy Kind = "busy"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind and message, so sentinel values declared
// with New work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Permission(message string, err error) *Error {
	return New(KindPermission, message, err)
}

func Validation(message string, err error) *Error {
	return New(KindValidation, message, err)
}

func Service(message string, err error) *Error {
	return New(KindService, message, err)
}

func Persistence(message string, err error) *Error {
	return New(KindPersistence, message, err)
}

func Busy(message string) *Error {
	return New(KindBusy, message, nil)
}

// KindOf returns the class of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
