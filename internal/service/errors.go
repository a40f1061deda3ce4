package service

import (
	"errors"
	"fmt"

	"github.com/sunu-rekolt/marketplace/internal/repo"
)

var (
	ErrValidation        = errors.New("validation")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotInvolved       = errors.New("not_involved")
	ErrNotFound          = errors.New("not_found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrPaymentDeclined   = errors.New("payment_declined")
)

// Error pairs an error kind with the French text shown to the user.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func fail(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

func failWrap(kind error, message string, err error) error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Message returns the user-facing text carried by err, or "".
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

// fromRepo maps repository sentinels onto service kinds and leaves other
// errors alone.
func fromRepo(err error, notFoundMsg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return failWrap(ErrNotFound, notFoundMsg, err)
	case errors.Is(err, repo.ErrConflict):
		return failWrap(ErrConflict, "Conflit avec l'état actuel", err)
	default:
		return err
	}
}
