package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for the engine's failure taxonomy. Every error that
// crosses an orchestration boundary is marked with exactly one of these.
// Marks ride outside the Unwrap chain, so classification goes through
// this package's Is predicates, not the standard library's errors.Is.
var (
	// ErrValidation indicates bad arguments or a missing backup source.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a missing artifact or base backup.
	ErrNotFound = errors.New("not found")

	// ErrIO indicates a disk or network failure.
	ErrIO = errors.New("i/o failure")

	// ErrAuthentication indicates a wrong password or tampered ciphertext.
	// Callers must invalidate any cached password when they see this.
	ErrAuthentication = errors.New("authentication failed")

	// ErrConfiguration indicates an unknown storage type, missing
	// credentials, or encryption enabled without a password source.
	ErrConfiguration = errors.New("configuration error")
)

// Validationf returns a new error marked as ErrValidation.
func Validationf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// NotFoundf returns a new error marked as ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrNotFound)
}

// Configurationf returns a new error marked as ErrConfiguration.
func Configurationf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrConfiguration)
}

// WrapIO wraps err with a message and marks it as ErrIO.
// Returns nil if err is nil.
func WrapIO(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrIO)
}

// WrapIOf wraps err with a formatted message and marks it as ErrIO.
func WrapIOf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrapf(err, format, args...), ErrIO)
}

// WrapAuth wraps err with a message and marks it as ErrAuthentication.
func WrapAuth(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, msg), ErrAuthentication)
}

// IsValidation reports whether err is marked as a validation failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsNotFound reports whether err is marked as a missing artifact or base.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsIO reports whether err is marked as a disk or network failure.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsAuthentication reports whether err is marked as an authentication
// failure.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsConfiguration reports whether err is marked as a configuration error.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
