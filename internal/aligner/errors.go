package aligner

import (
	"errors"
	"fmt"
	"strings"
)

// ProcessError reports that the aligner exited with a non-zero status.
type ProcessError struct {
	// Program is the executable that was run.
	Program string

	// ExitCode is the process exit status (-1 if the process was killed).
	ExitCode int

	// Stderr is the captured standard error stream.
	Stderr string
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Program, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// OutputError reports that the aligner succeeded but its stdout could not be parsed.
type OutputError struct {
	// Stdout is the raw standard output, kept for diagnostics.
	Stdout string

	// Reason describes what was wrong with the output.
	Reason string
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("unexpected aligner output (%s): %q", e.Reason, e.Stdout)
}

// DependencyMissingError reports that a required program is not installed.
type DependencyMissingError struct {
	Program string
	Err     error
}

func (e *DependencyMissingError) Error() string {
	return fmt.Sprintf("%s is not on the system path", e.Program)
}

func (e *DependencyMissingError) Unwrap() error {
	return e.Err
}

// IsProcessError returns true if err is or wraps a *ProcessError.
func IsProcessError(err error) bool {
	var pe *ProcessError
	return errors.As(err, &pe)
}

// IsOutputError returns true if err is or wraps an *OutputError.
func IsOutputError(err error) bool {
	var oe *OutputError
	return errors.As(err, &oe)
}

// IsDependencyMissing returns true if err is or wraps a *DependencyMissingError.
func IsDependencyMissing(err error) bool {
	var de *DependencyMissingError
	return errors.As(err, &de)
}
