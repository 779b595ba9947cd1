// Package aligner runs an external genome aligner for a single genome pair.
//
// The aligner is treated as a black box with a process contract:
//
//	<program> -q <query_path> -r <ref_path> -o /dev/stdout
//
// On success stdout holds one line of five whitespace-separated tokens:
//
//	query_path ref_path ani aligned_fragments total_fragments
//
// Empty stdout means the pair is below the aligner's reporting threshold and
// yields a zero Measurement. Any other shape is an *OutputError; a non-zero
// exit is a *ProcessError. Nothing is retried.
package aligner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/roach88/anicache/internal/ani"
)

// DefaultProgram is the FastANI executable name.
const DefaultProgram = "fastANI"

// Aligner compares a query genome against a reference genome.
type Aligner interface {
	Compare(ctx context.Context, key ani.PairKey, queryPath, refPath string) (ani.Measurement, error)
}

// FastANI runs the FastANI executable as a subprocess.
//
// Thread-safety: FastANI is stateless and safe for concurrent use.
type FastANI struct {
	Program string
}

// NewFastANI creates an adapter for the given executable.
// An empty program defaults to DefaultProgram.
func NewFastANI(program string) *FastANI {
	if program == "" {
		program = DefaultProgram
	}
	return &FastANI{Program: program}
}

// Compare runs the aligner on one pair and parses its output.
// Cancelling ctx kills the subprocess.
func (f *FastANI) Compare(ctx context.Context, key ani.PairKey, queryPath, refPath string) (ani.Measurement, error) {
	cmd := exec.CommandContext(ctx, f.Program, "-q", queryPath, "-r", refPath, "-o", "/dev/stdout")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ani.Measurement{}, fmt.Errorf("compare %s: %w", key, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ani.Measurement{}, fmt.Errorf("compare %s: %w", key, &ProcessError{
				Program:  f.Program,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			})
		}
		return ani.Measurement{}, fmt.Errorf("compare %s: %w", key, err)
	}

	m, _, err := ParseOutput(stdout.String())
	if err != nil {
		return ani.Measurement{}, fmt.Errorf("compare %s: %w", key, err)
	}
	return m, nil
}

// ParseOutput converts aligner stdout into a Measurement.
//
// belowThreshold is true when stdout was empty and the zero Measurement was
// substituted. Callers that only need the measurement can ignore it.
func ParseOutput(stdout string) (m ani.Measurement, belowThreshold bool, err error) {
	tokens := strings.Fields(stdout)
	switch len(tokens) {
	case 0:
		return ani.Measurement{}, true, nil
	case 5:
	default:
		return ani.Measurement{}, false, &OutputError{
			Stdout: stdout,
			Reason: fmt.Sprintf("expected 5 tokens, got %d", len(tokens)),
		}
	}

	identity, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return ani.Measurement{}, false, &OutputError{Stdout: stdout, Reason: "invalid ani"}
	}
	aligned, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return ani.Measurement{}, false, &OutputError{Stdout: stdout, Reason: "invalid aligned fragment count"}
	}
	total, err := strconv.Atoi(tokens[4])
	if err != nil {
		return ani.Measurement{}, false, &OutputError{Stdout: stdout, Reason: "invalid total fragment count"}
	}
	if total == 0 {
		return ani.Measurement{}, false, &OutputError{Stdout: stdout, Reason: "zero total fragments"}
	}

	return ani.Measurement{ANI: identity, AF: aligned / float64(total)}, false, nil
}

var versionPattern = regexp.MustCompile(`version (.+)`)

// Version returns the version string reported by the aligner.
//
// FastANI prints its version on stderr. Releases before 1.3 reject -v with
// "Unknown option:". Any failure to determine the version yields "unknown".
func (f *FastANI) Version(ctx context.Context) string {
	cmd := exec.CommandContext(ctx, f.Program, "-v")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run() // older releases exit non-zero on -v

	out := stderr.String()
	if strings.HasPrefix(out, "Unknown option:") {
		return "unknown (<1.3)"
	}
	if m := versionPattern.FindStringSubmatch(out); m != nil {
		return strings.TrimSpace(m[1])
	}
	return "unknown"
}

// CheckDependencies verifies every program can be resolved to an executable.
// Returns a *DependencyMissingError for the first program that cannot.
func CheckDependencies(programs ...string) error {
	for _, p := range programs {
		if _, err := exec.LookPath(p); err != nil {
			return &DependencyMissingError{Program: p, Err: err}
		}
	}
	return nil
}

// Counting wraps an Aligner and counts Compare calls.
//
// Thread-safety: Counting is safe for concurrent use if the wrapped Aligner is.
type Counting struct {
	Aligner
	calls atomic.Int64
}

// NewCounting wraps inner with call-count instrumentation.
func NewCounting(inner Aligner) *Counting {
	return &Counting{Aligner: inner}
}

// Compare delegates to the wrapped Aligner and increments the call count.
func (c *Counting) Compare(ctx context.Context, key ani.PairKey, queryPath, refPath string) (ani.Measurement, error) {
	c.calls.Add(1)
	return c.Aligner.Compare(ctx, key, queryPath, refPath)
}

// Calls returns the number of Compare calls so far.
func (c *Counting) Calls() int64 {
	return c.calls.Load()
}
