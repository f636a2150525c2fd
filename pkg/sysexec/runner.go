// Package sysexec runs the operating-system utilities the toolkit relies on.
package sysexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Runner executes external commands. Adapters only ever talk to a Runner so
// raw process handling stays in this package.
type Runner interface {
	// LookPath resolves a binary on PATH.
	LookPath(name string) (string, error)
	// Output runs a command and returns its stdout. A non-zero exit returns
	// the captured stdout together with an *ExitError.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs a command with its output attached to the given writers.
	Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error
}

// ExecRunner is the Runner backed by os/exec.
type ExecRunner struct {
	// Timeout bounds every command. Zero means no limit.
	Timeout time.Duration
}

// NewExecRunner returns an ExecRunner with the given per-command timeout.
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), wrapRunError(name, err, stderr.String())
}

func (r *ExecRunner) Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return wrapRunError(name, cmd.Run(), "")
}

func (r *ExecRunner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout > 0 {
		return context.WithTimeout(ctx, r.Timeout)
	}
	return context.WithCancel(ctx)
}

func wrapRunError(name string, err error, stderr string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Name: name, Code: exitErr.ExitCode(), Stderr: strings.TrimSpace(stderr)}
	}
	return fmt.Errorf("running %s: %w", name, err)
}
