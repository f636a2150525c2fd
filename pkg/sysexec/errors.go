package sysexec

import (
	"errors"
	"fmt"
	"os/exec"
)

var (
	// ErrSourceUnavailable means an external command was missing, exited
	// non-zero, or produced output that could not be used.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrCapabilityMissing means an optional facility (process listing,
	// ClamAV, ...) is not installed on this machine.
	ErrCapabilityMissing = errors.New("capability missing")

	// ErrScriptNotFound means a dispatch path does not exist on disk.
	ErrScriptNotFound = errors.New("script not found")
)

// ExitError reports a command that ran but exited with a non-zero status.
type ExitError struct {
	Name   string
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Name, e.Code, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
}

// IsNotFound reports whether err means the binary is not on PATH.
func IsNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound)
}

// ExitCode returns the exit status carried by err, if any.
func ExitCode(err error) (int, bool) {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code, true
	}
	return 0, false
}

// Unavailable wraps err as ErrSourceUnavailable for the named source.
func Unavailable(source string, err error) error {
	return fmt.Errorf("%s: %w: %v", source, ErrSourceUnavailable, err)
}

// Missing wraps err as ErrCapabilityMissing for the named capability.
func Missing(capability string, err error) error {
	return fmt.Errorf("%s: %w: %v", capability, ErrCapabilityMissing, err)
}
