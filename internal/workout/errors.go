package workout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/workoutbot/internal/store"
)

// Error kinds. Every error returned by this package matches one of them (or
// a store error) with errors.Is.
var (
	// ErrInvalidArgument covers bad scope/ID combinations, unknown fields
	// and malformed choice values.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation covers field values that break a field's constraint.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is the store's sentinel, re-exported for callers of this package.
	ErrNotFound = store.ErrNotFound
)

// Error carries a message meant for the chat user alongside its kind
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func invalidArgf(format string, args ...interface{}) error {
	return &Error{Kind: ErrInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func validationf(format string, args ...interface{}) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...interface{}) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

// UserMessage renders err for the person who ran the command. Joined errors
// are listed one per line.
func UserMessage(err error) string {
	msgs := userMessages(err)
	return "Error! " + strings.Join(msgs, "\nAlso! ")
}

func userMessages(err error) []string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var msgs []string
		for _, e := range joined.Unwrap() {
			msgs = append(msgs, userMessages(e)...)
		}
		return msgs
	}

	var e *Error
	switch {
	case errors.As(err, &e):
		return []string{e.Msg}
	case errors.Is(err, store.ErrNotFound):
		return []string{"There are no workouts recorded under your name yet. Get swole, then try again."}
	case errors.Is(err, store.ErrConflict):
		return []string{"Your records were changed by another request at the same time. Please try again."}
	}
	return []string{"Something went wrong on our side. Please try again later."}
}
