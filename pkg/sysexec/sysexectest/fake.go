// Package sysexectest provides a scripted sysexec.Runner for tests.
package sysexectest

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/user/cyberusb/pkg/sysexec"
)

// Response is a canned result for a faked command.
type Response struct {
	Stdout string
	Stderr string
	Code   int
	Err    error
}

type fakeRule struct {
	name     string
	contains string
	resp     Response
}

// Fake is a scripted Runner for tests. Commands without a matching rule
// behave as if the binary were not installed. It is safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	rules []fakeRule
	Calls []string
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{}
}

// On registers a response for name whose joined arguments contain the given
// substring. Earlier rules win.
func (f *Fake) On(name, contains string, resp Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, fakeRule{name: name, contains: contains, resp: resp})
	return f
}

func (f *Fake) find(name string, args []string) (Response, bool) {
	joined := strings.Join(args, " ")
	for _, r := range f.rules {
		if r.name == name && strings.Contains(joined, r.contains) {
			return r.resp, true
		}
	}
	return Response{}, false
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.rules {
		if r.name == name {
			return "/usr/bin/" + name, nil
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

func (f *Fake) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	resp, ok := f.find(name, args)
	f.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, exec.ErrNotFound)
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Code != 0 {
		return []byte(resp.Stdout), &sysexec.ExitError{Name: name, Code: resp.Code, Stderr: resp.Stderr}
	}
	return []byte(resp.Stdout), nil
}

func (f *Fake) Stream(ctx context.Context, stdout, stderr io.Writer, name string, args ...string) error {
	out, err := f.Output(ctx, name, args...)
	if stdout != nil {
		stdout.Write(out)
	}
	return err
}
