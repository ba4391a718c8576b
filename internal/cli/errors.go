package cli

import (
	"errors"
	"strings"
)

var (
	// ErrNameNotFound is returned when a friendly name is not saved.
	ErrNameNotFound = errors.New("name not found")
	// ErrPemDirEmpty is returned when the pem directory holds no key files.
	ErrPemDirEmpty = errors.New("no pem files found")
)

// UserError is a recoverable failure with a message meant for the terminal.
// The command prints Message and exits cleanly instead of failing.
type UserError struct {
	Kind    error
	Message string
}

func (e *UserError) Error() string {
	if e == nil {
		return ""
	}
	if strings.TrimSpace(e.Message) == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *UserError) Unwrap() error { return e.Kind }

func nameNotFound(name string) error {
	return &UserError{
		Kind:    ErrNameNotFound,
		Message: "Friendly name " + name + " not present, to register this name run sshh -a/--add",
	}
}
