package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrAccessDenied   = errors.New("access denied")
	ErrInvalidCommand = errors.New("invalid command")
	ErrInvalidEntry   = errors.New("invalid translation entry")
	ErrUnknownLang    = errors.New("unknown language code")
	ErrSameLanguage   = errors.New("source and target language must differ")
)

// ConfigurationError reports an invalid setting found at startup.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CorruptStoreError means the storage file exists but cannot be understood.
// The process must not start serving with such a file.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }

// PersistenceError means a mutation could not be made durable. The store
// keeps its previous state.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InvalidCommandError carries the usage hint for a malformed command.
type InvalidCommandError struct {
	Usage  string
	Reason error
}

func (e *InvalidCommandError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("invalid command (%s): %v", e.Usage, e.Reason)
	}
	return fmt.Sprintf("invalid command (%s)", e.Usage)
}

func (e *InvalidCommandError) Unwrap() []error {
	if e.Reason != nil {
		return []error{ErrInvalidCommand, e.Reason}
	}
	return []error{ErrInvalidCommand}
}
