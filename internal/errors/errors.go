// Package errors provides typed errors for mdlinkify.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies the type of error.
type ErrorCode string

const (
	ErrConfigInvalid ErrorCode = "CONFIG_INVALID"
	ErrIndexNotFound ErrorCode = "INDEX_NOT_FOUND"
	ErrFileNotFound  ErrorCode = "FILE_NOT_FOUND"
	ErrApplyFailed   ErrorCode = "APPLY_FAILED"
	ErrStaleBuffer   ErrorCode = "STALE_BUFFER"
	ErrInvalidPlan   ErrorCode = "INVALID_PLAN"
)

// LinkifyError represents a typed error with a user-facing hint.
type LinkifyError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Cause   error
}

func (e *LinkifyError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *LinkifyError) Unwrap() error {
	return e.Cause
}

// HintText returns the hint; the CLI prints it under the error line.
func (e *LinkifyError) HintText() string {
	return e.Hint
}

// New creates a new LinkifyError.
func New(code ErrorCode, message, hint string) *LinkifyError {
	return &LinkifyError{Code: code, Message: message, Hint: hint}
}

// Wrap creates a new LinkifyError wrapping an existing error.
func Wrap(code ErrorCode, message, hint string, cause error) *LinkifyError {
	return &LinkifyError{Code: code, Message: message, Hint: hint, Cause: cause}
}

// HasCode reports whether err or any error it wraps is a LinkifyError with code.
func HasCode(err error, code ErrorCode) bool {
	var le *LinkifyError
	if stderrors.As(err, &le) {
		return le.Code == code
	}
	return false
}

// ConfigInvalid returns an error for a configuration value that cannot be used.
func ConfigInvalid(reason string, cause error) *LinkifyError {
	return &LinkifyError{
		Code:    ErrConfigInvalid,
		Message: fmt.Sprintf("invalid config: %s", reason),
		Hint:    "Check mdlinkify.yaml in the vault root",
		Cause:   cause,
	}
}

// IndexNotFound returns an error when the title index has not been built.
func IndexNotFound(vault string) *LinkifyError {
	return &LinkifyError{
		Code:    ErrIndexNotFound,
		Message: fmt.Sprintf("title index not found in %s", vault),
		Hint:    "Run `mdlinkify index` to build it",
	}
}

// FileNotFound returns an error for a note that is not in the vault.
func FileNotFound(path string) *LinkifyError {
	return &LinkifyError{
		Code:    ErrFileNotFound,
		Message: fmt.Sprintf("file not found or excluded: %s", path),
		Hint:    "Paths are relative to --vault",
	}
}

// ApplyFailed returns an error for a conversion that could not be written.
func ApplyFailed(path string, cause error) *LinkifyError {
	return &LinkifyError{
		Code:    ErrApplyFailed,
		Message: fmt.Sprintf("failed to apply links to %s", path),
		Hint:    "No note was changed",
		Cause:   cause,
	}
}

// StaleBuffer returns an error when a note changed between scan and write.
func StaleBuffer(path string) *LinkifyError {
	return &LinkifyError{
		Code:    ErrStaleBuffer,
		Message: fmt.Sprintf("%s changed since it was read", path),
		Hint:    "Run the conversion again",
	}
}

// InvalidPlan returns an error for edits that overlap or fall outside the text.
func InvalidPlan(reason string) *LinkifyError {
	return &LinkifyError{
		Code:    ErrInvalidPlan,
		Message: fmt.Sprintf("invalid edit plan: %s", reason),
	}
}
