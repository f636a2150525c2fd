package ui

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/user/cyberusb/pkg/engine"
)

func TestPrompterReadLine(t *testing.T) {
	out := &bytes.Buffer{}
	p := NewPrompter(strings.NewReader("  2 \nlast"), out)

	line, err := p.ReadLine("Select option (1-5): ")
	if err != nil || line != "2" {
		t.Fatalf("ReadLine = %q, %v", line, err)
	}
	if out.String() != "Select option (1-5): " {
		t.Errorf("prompt = %q", out.String())
	}

	line, err = p.ReadLine("")
	if err != nil || line != "last" {
		t.Fatalf("final unterminated line = %q, %v", line, err)
	}
	if _, err := p.ReadLine(""); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		p := NewPrompter(strings.NewReader(tt.input), io.Discard)
		got, err := p.Confirm("Continue?")
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestConfirmEOF(t *testing.T) {
	p := NewPrompter(strings.NewReader(""), io.Discard)
	if _, err := p.Confirm("Continue?"); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestColorizeReport(t *testing.T) {
	text := "  - /tmp/x\n    Severity: high\n"

	saved := color.NoColor
	defer func() { color.NoColor = saved }()

	DisableColor()
	if got := ColorizeReport(text); got != text {
		t.Errorf("colorless output changed: %q", got)
	}

	color.NoColor = false
	got := ColorizeReport(text)
	if !strings.Contains(got, "\x1b[") || !strings.Contains(got, "    Severity: ") {
		t.Errorf("expected colored severity with indent kept, got %q", got)
	}
	if !strings.HasPrefix(got, "  - /tmp/x\n") {
		t.Errorf("non-severity lines must be untouched, got %q", got)
	}
}

func TestSeverityColor(t *testing.T) {
	if SeverityColor(engine.SeverityCritical) != CriticalColor {
		t.Error("critical should use CriticalColor")
	}
	if SeverityColor(engine.SeverityMedium) != WarningColor {
		t.Error("medium should use WarningColor")
	}
}
