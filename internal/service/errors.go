package service

import (
	"fmt"

	"github.com/go-faster/errors"

	"medcontrol-backend/internal/repository"
)

// Error kinds. Handlers translate them to HTTP status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalid      = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error is a user-facing failure with a kind and a readable message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error { return newError(ErrNotFound, format, args...) }

func conflictf(format string, args ...any) error { return newError(ErrConflict, format, args...) }

func invalidf(format string, args ...any) error { return newError(ErrInvalid, format, args...) }

// lookup converts a repository miss into a not-found error carrying msg.
func lookup(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundf("%s", msg)
	}
	return err
}

// Message extracts the user-facing message of err, if it carries one.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
