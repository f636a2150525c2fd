// Package dispatch runs the platform scripts the menu actions point to.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/sysexec"
)

var (
	// ErrActionUnavailable means the target has no script for an action.
	ErrActionUnavailable = errors.New("function not available")
	// ErrUnsupportedScript means no interpreter is known for a script's extension.
	ErrUnsupportedScript = errors.New("unsupported script type")
)

// Command returns the interpreter invocation for a script, chosen by its
// extension.
func Command(path string) (string, []string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ps1":
		return "powershell", []string{"-ExecutionPolicy", "Bypass", "-File", path}, nil
	case ".sh":
		return "bash", []string{path}, nil
	case ".go":
		return "go", []string{"run", path}, nil
	default:
		return "", nil, fmt.Errorf("%s: %w", path, ErrUnsupportedScript)
	}
}

// Dispatcher maps action names to scripts under Root using the target's table.
type Dispatcher struct {
	Root   string
	Target platform.Target
	Runner sysexec.Runner
	Stdout io.Writer
	Stderr io.Writer
}

// Has reports whether the target's table names the action at all.
func (d *Dispatcher) Has(action string) bool {
	_, ok := d.Target.Scripts()[action]
	return ok
}

// Resolve returns the absolute script path for action. It fails with
// ErrActionUnavailable for actions missing from the table and
// sysexec.ErrScriptNotFound when the file is absent.
func (d *Dispatcher) Resolve(action string) (string, error) {
	rel, ok := d.Target.Scripts()[action]
	if !ok {
		return "", fmt.Errorf("%w for %s: %s", ErrActionUnavailable, d.Target.Distro(), action)
	}
	path := filepath.Join(d.Root, filepath.FromSlash(rel))
	if _, err := os.Stat(path); err != nil {
		return path, fmt.Errorf("%w: %s", sysexec.ErrScriptNotFound, path)
	}
	return path, nil
}

// Run executes the script for action with its output attached to the
// dispatcher's writers. A script that runs and exits non-zero is logged but
// not returned as an error.
func (d *Dispatcher) Run(ctx context.Context, action string) error {
	path, err := d.Resolve(action)
	if err != nil {
		return err
	}
	name, args, err := Command(path)
	if err != nil {
		return err
	}

	logger.Debugf("Dispatching %s -> %s %s", action, name, strings.Join(args, " "))
	err = d.Runner.Stream(ctx, d.writer(d.Stdout), d.writer(d.Stderr), name, args...)
	if code, ok := sysexec.ExitCode(err); ok {
		logger.Warnf("Script %s exited with status %d", filepath.Base(path), code)
		return nil
	}
	if err != nil {
		return fmt.Errorf("error running script: %w", err)
	}
	return nil
}

func (d *Dispatcher) writer(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
