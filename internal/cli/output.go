package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Run failure (aligner crashed, unparseable output, cache write failed)
	ExitCommandError = 2 // Command error (invalid flags, missing genomes, database not found)
)

// Error codes reported in JSON error responses.
const (
	ErrCodeGeneric = "E001" // Error without an exit code
	ErrCodeRun     = "E002" // ExitFailure
	ErrCodeCommand = "E003" // ExitCommandError
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results as JSON envelopes or text.
//
// Text rendering belongs to each command; the formatter only decides which
// one applies and owns the JSON envelope.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope written by every command with --format json.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	RunID  string      `json:"run_id,omitempty"` // engine run id (compare only)
	Data   interface{} `json:"data,omitempty"`   // command result
	Error  *CLIError   `json:"error,omitempty"`  // error details
}

// CLIError is the error part of a CLIResponse.
type CLIError struct {
	Code     string      `json:"code"`              // ErrCodeRun, ErrCodeCommand, ...
	ExitCode int         `json:"exit_code"`         // process exit status
	Message  string      `json:"message"`           // human-readable message
	Details  interface{} `json:"details,omitempty"` // underlying error text
}

// JSON reports whether results are written as JSON envelopes.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success writes an "ok" envelope. runID ties the response to the log
// records of a comparison run and is empty for dump and stats.
func (f *OutputFormatter) Success(runID string, data interface{}) error {
	return json.NewEncoder(f.Writer).Encode(CLIResponse{
		Status: "ok",
		RunID:  runID,
		Data:   data,
	})
}

// Error writes an "error" envelope.
func (f *OutputFormatter) Error(e CLIError) error {
	return json.NewEncoder(f.Writer).Encode(CLIResponse{
		Status: "error",
		Error:  &e,
	})
}

// emitError writes err as an error envelope when the format is JSON. The
// error is returned unchanged so the exit code still propagates; in text mode
// main prints it.
func emitError(f *OutputFormatter, err error) error {
	if err == nil || !f.JSON() {
		return err
	}

	e := CLIError{Code: ErrCodeGeneric, ExitCode: GetExitCode(err), Message: err.Error()}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		e.Message = exitErr.Message
		if exitErr.Err != nil {
			e.Details = exitErr.Err.Error()
		}
		switch exitErr.Code {
		case ExitFailure:
			e.Code = ErrCodeRun
		case ExitCommandError:
			e.Code = ErrCodeCommand
		}
	}
	_ = f.Error(e)
	return err
}
