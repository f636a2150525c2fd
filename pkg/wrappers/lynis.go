package wrappers

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/sysexec"
)

// HardeningAudit runs a quick Lynis system audit and reads back its report
// file. Lynis output is streamed to Out while it runs.
type HardeningAudit struct {
	Runner sysexec.Runner
	Out    io.Writer
	// ReportFile defaults to lynis-report.dat in the temp directory.
	ReportFile string
}

func (l *HardeningAudit) Name() string {
	return "lynis"
}

func (l *HardeningAudit) reportPath() string {
	if l.ReportFile != "" {
		return l.ReportFile
	}
	return filepath.Join(os.TempDir(), "lynis-report.dat")
}

// Collect returns {kind, test, message} records, kind being "warning" or
// "suggestion".
func (l *HardeningAudit) Collect(ctx context.Context) ([]engine.Record, error) {
	if _, err := l.Runner.LookPath("lynis"); err != nil {
		return []engine.Record{}, sysexec.Missing("hardening audit (lynis)", err)
	}

	report := l.reportPath()
	os.Remove(report)

	out := l.Out
	if out == nil {
		out = io.Discard
	}
	err := l.Runner.Stream(ctx, out, out, "lynis", "audit", "system", "--quick", "--no-colors", "--report-file", report)
	// Lynis exits non-zero when it has warnings; the report file decides.
	if err != nil {
		logger.Debugf("lynis finished with: %v", err)
	}

	data, err := os.ReadFile(report)
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(l.Name(), fmt.Errorf("report file: %w", err))
	}
	return ParseLynisReport(data, l.Name()), nil
}

// ParseLynisReport extracts warning[]= and suggestion[]= entries. Entries
// look like "TEST-ID|message|details|solution|".
func ParseLynisReport(data []byte, source string) []engine.Record {
	records := []engine.Record{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		var kind, rest string
		switch {
		case strings.HasPrefix(line, "warning[]="):
			kind, rest = "warning", strings.TrimPrefix(line, "warning[]=")
		case strings.HasPrefix(line, "suggestion[]="):
			kind, rest = "suggestion", strings.TrimPrefix(line, "suggestion[]=")
		default:
			continue
		}

		test, msg := "", rest
		if parts := strings.Split(rest, "|"); len(parts) > 1 {
			test, msg = parts[0], parts[1]
		}
		records = append(records, engine.NewRecord(source,
			"kind", kind,
			"test", test,
			"message", msg,
		))
	}
	return records
}

// HardeningFindings maps Lynis warnings to medium and suggestions to low
// severity findings.
func HardeningFindings(records []engine.Record, category string) []engine.Finding {
	findings := make([]engine.Finding, 0, len(records))
	for _, r := range records {
		sev := engine.SeverityLow
		if r.Get("kind") == "warning" {
			sev = engine.SeverityMedium
		}
		findings = append(findings, engine.Finding{
			Record:   r,
			Subject:  r.GetOr("message", "Unknown"),
			Category: category,
			Reason:   fmt.Sprintf("Lynis %s %s", r.Get("kind"), r.Get("test")),
			Severity: sev,
		})
	}
	return findings
}
