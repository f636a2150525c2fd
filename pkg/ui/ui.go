// Package ui holds console styling and prompts shared by the menu and commands.
package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/user/cyberusb/pkg/engine"
)

var (
	HeaderColor   = color.New(color.FgHiCyan, color.Bold)
	InfoColor     = color.New(color.FgHiBlue)
	SuccessColor  = color.New(color.FgGreen)
	WarningColor  = color.New(color.FgYellow)
	CriticalColor = color.New(color.FgRed, color.Bold)
)

// DisableColor turns off all ANSI output.
func DisableColor() {
	color.NoColor = true
}

// Banner returns a title framed by "=" lines of the given width.
func Banner(title string, width int) string {
	line := strings.Repeat("=", width)
	return fmt.Sprintf("%s\n%s\n%s", line, HeaderColor.Sprint(title), line)
}

// SeverityColor picks the color used for a severity label.
func SeverityColor(s engine.Severity) *color.Color {
	switch s.Rank() {
	case 4, 3:
		return CriticalColor
	case 2:
		return WarningColor
	case 1:
		return InfoColor
	default:
		return color.New(color.Reset)
	}
}

// ColorizeReport highlights the severity lines of a rendered report.
func ColorizeReport(text string) string {
	if color.NoColor {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "Severity: ") {
			continue
		}
		sev := engine.Severity(strings.TrimPrefix(trimmed, "Severity: "))
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		lines[i] = indent + "Severity: " + SeverityColor(sev).Sprint(string(sev))
	}
	return strings.Join(lines, "\n")
}
