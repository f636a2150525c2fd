package dispatch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/sysexec/sysexectest"
)

func TestCommandByExtension(t *testing.T) {
	tests := []struct {
		path     string
		wantName string
		wantArgs []string
	}{
		{`C:\kit\cleanup.ps1`, "powershell", []string{"-ExecutionPolicy", "Bypass", "-File", `C:\kit\cleanup.ps1`}},
		{"/kit/security.SH", "bash", []string{"/kit/security.SH"}},
		{"/kit/tool.go", "go", []string{"run", "/kit/tool.go"}},
	}
	for _, tt := range tests {
		name, args, err := Command(tt.path)
		if err != nil {
			t.Fatalf("Command(%s): %v", tt.path, err)
		}
		if name != tt.wantName || !reflect.DeepEqual(args, tt.wantArgs) {
			t.Errorf("Command(%s) = %s %v", tt.path, name, args)
		}
	}

	if _, _, err := Command("/kit/readme.txt"); !errors.Is(err, ErrUnsupportedScript) {
		t.Errorf("expected ErrUnsupportedScript, got %v", err)
	}
}

func newDispatcher(t *testing.T, r sysexec.Runner) (*Dispatcher, string) {
	root := t.TempDir()
	return &Dispatcher{
		Root:   root,
		Target: platform.LinuxTarget{Name: "linux"},
		Runner: r,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}, root
}

func TestResolveErrors(t *testing.T) {
	d, _ := newDispatcher(t, sysexectest.NewFake())

	_, err := d.Resolve("drivers")
	if !errors.Is(err, ErrActionUnavailable) {
		t.Fatalf("expected ErrActionUnavailable, got %v", err)
	}
	if err.Error() != "function not available for linux: drivers" {
		t.Errorf("unexpected message: %q", err.Error())
	}

	if _, err := d.Resolve("security"); !errors.Is(err, sysexec.ErrScriptNotFound) {
		t.Errorf("expected ErrScriptNotFound, got %v", err)
	}
	if d.Has("drivers") || !d.Has("security") {
		t.Error("Has disagrees with the script table")
	}
}

func TestRunInvokesInterpreter(t *testing.T) {
	fake := sysexectest.NewFake().On("bash", "security.sh", sysexectest.Response{Stdout: "hardening done\n"})
	d, root := newDispatcher(t, fake)

	script := filepath.Join(root, "OS", "Linux", "Scripts", "security.sh")
	if err := os.MkdirAll(filepath.Dir(script), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(script, []byte("#!/bin/bash\n"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := d.Run(context.Background(), "security"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(fake.Calls) != 1 || fake.Calls[0] != "bash "+script {
		t.Errorf("unexpected calls: %v", fake.Calls)
	}
	if got := d.Stdout.(*bytes.Buffer).String(); got != "hardening done\n" {
		t.Errorf("script output not forwarded: %q", got)
	}
}

func TestRunNonZeroExitIsNotAnError(t *testing.T) {
	fake := sysexectest.NewFake().On("bash", "network_scan.sh", sysexectest.Response{Code: 3})
	d, root := newDispatcher(t, fake)

	script := filepath.Join(root, "OS", "Linux", "Scripts", "network_scan.sh")
	os.MkdirAll(filepath.Dir(script), 0755)
	os.WriteFile(script, nil, 0755)

	if err := d.Run(context.Background(), "network"); err != nil {
		t.Errorf("non-zero exit should only be logged, got %v", err)
	}
}

func TestRunMissingInterpreter(t *testing.T) {
	d, root := newDispatcher(t, sysexectest.NewFake())

	script := filepath.Join(root, "OS", "Linux", "Scripts", "cleanup.sh")
	os.MkdirAll(filepath.Dir(script), 0755)
	os.WriteFile(script, nil, 0755)

	err := d.Run(context.Background(), "cleanup")
	if err == nil || !sysexec.IsNotFound(err) {
		t.Errorf("expected interpreter not found, got %v", err)
	}
}
