// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes shared by all commands.
//
// Handlers return errors; main displays them once and exits with the code
// from GetExitCode.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/battery-assistant/internal/config"
	"github.com/jeranaias/battery-assistant/internal/dispatch"
	"github.com/jeranaias/battery-assistant/internal/ingest"
	"github.com/jeranaias/battery-assistant/internal/llm"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitAuthError    = 4
	ExitFileError    = 7
	ExitTimeoutError = 8
)

// ErrReplyFailed is matched by the error ask returns when the reply is an
// error message. The message itself has already been printed.
var ErrReplyFailed = errors.New("the assistant could not answer")

// ReplyError carries the failed dispatch result behind an error reply. It
// matches ErrReplyFailed and the result's cause.
type ReplyError struct {
	Result dispatch.Result
}

func (e *ReplyError) Error() string {
	return ErrReplyFailed.Error()
}

func (e *ReplyError) Unwrap() []error {
	errs := []error{ErrReplyFailed}
	if e.Result.Kind == dispatch.KindCredentials && !llm.IsCredentialError(e.Result.Cause) {
		errs = append(errs, llm.ErrAuthFailed)
	}
	if e.Result.Cause != nil {
		errs = append(errs, e.Result.Cause)
	}
	return errs
}

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "config", "ask")
	Action  string // Action being performed (e.g., "init", "attach")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid user input.
type ValidationError struct {
	Field   string // Field that failed validation
	Value   string // Value that was provided
	Reason  string // Why validation failed
	Example string // Example of valid value (optional)
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// NewValidationError creates a new validation error.
func NewValidationError(field, value, reason string) error {
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// NewValidationErrorWithExample creates a validation error with an example.
func NewValidationErrorWithExample(field, value, reason, example string) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Reason:  reason,
		Example: example,
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err in the common "[ERROR] ..." format. ErrReplyFailed
// is skipped because the reply was already shown.
func DisplayError(w io.Writer, err error) {
	if err == nil || errors.Is(err, ErrReplyFailed) {
		return
	}
	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())

	if errors.Is(err, config.ErrMissingAPIKey) {
		fmt.Fprintf(w, "%s\n", DimStyle.Render("Run '"+AppName+" config init' and set provider.api_key, or export API_KEY."))
	}
}

// GetExitCode maps an error to a process exit code.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return ExitUsageError
	}

	var readErr *ingest.ReadError
	if errors.As(err, &readErr) {
		return ExitFileError
	}

	var cfgErrs config.ValidateErrors
	switch {
	case errors.Is(err, config.ErrMissingAPIKey), errors.As(err, &cfgErrs):
		return ExitConfigError
	case errors.Is(err, llm.ErrAuthFailed), errors.Is(err, llm.ErrNotConfigured):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	}
	return ExitGeneralError
}
