package errors

import (
	goerrors "errors"
	"fmt"
)

// New creates a new error with the given message.
func New(msg string, args ...interface{}) error {
	if len(args) == 0 {
		return goerrors.New(msg)
	}
	return fmt.Errorf(msg, args...)
}

// contextError wraps an error with a short description of what was being
// attempted when it occurred.
type contextError struct {
	err     error
	context string
}

func (err contextError) Error() string {
	return fmt.Sprintf("%s: %s", err.context, err.err)
}

func (err contextError) Unwrap() error {
	return err.err
}

// WithContext annotates `err` with `context`. It returns nil if `err` is nil,
// so it's safe to wrap the return value of a function without checking it
// first.
func WithContext(err error, context string) error {
	if err == nil {
		return nil
	}
	return contextError{err: err, context: context}
}

// RootCause returns the innermost error that was wrapped with WithContext.
func RootCause(err error) error {
	for {
		ctxErr, ok := err.(contextError)
		if !ok {
			return err
		}
		err = ctxErr.err
	}
}

// FriendlyError is an error whose message is suitable for showing directly
// to users.
type FriendlyError struct {
	msg string
}

// NewFriendlyError creates a FriendlyError from the given format string.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.msg
}

// FriendlyMessage returns the user-facing message.
func (err FriendlyError) FriendlyMessage() string {
	return err.msg
}

type friendlyMessager interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the message that should be shown to the user
// for `err`. Errors that define a friendly message are unwrapped so that the
// user doesn't see our internal context chain.
func GetPrintableMessage(err error) string {
	if friendly, ok := RootCause(err).(friendlyMessager); ok {
		return friendly.FriendlyMessage()
	}
	return err.Error()
}
