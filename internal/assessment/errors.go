package assessment

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package matches exactly one of
// these with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrExhausted    = errors.New("no further levels")
	ErrStore        = errors.New("store failure")
)

// Error carries a kind, a human readable message and an optional cause.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

var (
	ErrAttemptNotFound    = &Error{Kind: ErrNotFound, Msg: "user assessment test not found"}
	ErrTestNotFound       = &Error{Kind: ErrNotFound, Msg: "assessment test not found"}
	ErrAlreadyCompleted   = &Error{Kind: ErrConflict, Msg: "user assessment test already completed"}
	ErrInvalidAnswerCount = &Error{Kind: ErrInvalidInput, Msg: "invalid number of answers"}
	ErrDuplicateLevel     = &Error{Kind: ErrConflict, Msg: "assessment test level already exists for subject"}
	ErrOpenAttemptExists  = &Error{Kind: ErrConflict, Msg: "an incomplete attempt already exists for subject"}
)

func invalidInput(msg string) error { return &Error{Kind: ErrInvalidInput, Msg: msg} }

func exhausted(s Subject) error {
	return &Error{Kind: ErrExhausted, Msg: fmt.Sprintf("user has maxed out tests for %s", s)}
}

// storeErr wraps a repository failure, naming the store operation.
// Errors that already carry a kind pass through untouched.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: ErrStore, Msg: op + ": " + err.Error(), Cause: err}
}

// opErr prefixes an operation failure, keeping the chain intact.
func opErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
