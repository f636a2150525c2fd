package wrappers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
)

// SecretScanner looks for hard-coded credentials under Dir with gitleaks.
type SecretScanner struct {
	Runner sysexec.Runner
	Dir    string
}

func (g *SecretScanner) Name() string {
	return "gitleaks"
}

// Collect returns {file, line, rule, description} records. The secret
// itself is never copied into a record.
func (g *SecretScanner) Collect(ctx context.Context) ([]engine.Record, error) {
	if _, err := g.Runner.LookPath("gitleaks"); err != nil {
		return []engine.Record{}, sysexec.Missing("credential audit (gitleaks)", err)
	}

	reportFile, err := os.CreateTemp("", "gitleaks-report-*.json")
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(g.Name(), err)
	}
	reportPath := reportFile.Name()
	reportFile.Close()
	defer os.Remove(reportPath)

	_, err = g.Runner.Output(ctx, "gitleaks", "detect", "--no-git", "--no-banner",
		"--source", g.Dir, "--report-format", "json", "--report-path", reportPath)
	// Exit status 1 means leaks were found.
	if err != nil {
		if code, ok := sysexec.ExitCode(err); !ok || code != 1 {
			return []engine.Record{}, sysexec.Unavailable(g.Name(), err)
		}
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(g.Name(), err)
	}
	records, err := ParseGitleaksJSON(data, g.Name())
	if err != nil {
		return []engine.Record{}, sysexec.Unavailable(g.Name(), err)
	}
	return records, nil
}

type gitleaksFinding struct {
	Description string `json:"Description"`
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
	RuleID      string `json:"RuleID"`
}

// ParseGitleaksJSON decodes a gitleaks JSON report. An empty report is no leaks.
func ParseGitleaksJSON(data []byte, source string) ([]engine.Record, error) {
	records := []engine.Record{}
	if len(data) == 0 {
		return records, nil
	}

	var leaks []gitleaksFinding
	if err := json.Unmarshal(data, &leaks); err != nil {
		return nil, err
	}
	for _, l := range leaks {
		records = append(records, engine.NewRecord(source,
			"file", l.File,
			"line", strconv.Itoa(l.StartLine),
			"rule", l.RuleID,
			"description", l.Description,
		))
	}
	return records, nil
}

// SecretFindings reports every leak as critical.
func SecretFindings(records []engine.Record, category string) []engine.Finding {
	findings := make([]engine.Finding, 0, len(records))
	for _, r := range records {
		findings = append(findings, engine.Finding{
			Record:   r,
			Subject:  fmt.Sprintf("%s:%s", r.Get("file"), r.Get("line")),
			Category: category,
			Reason:   fmt.Sprintf("Rule %s: %s", r.Get("rule"), r.Get("description")),
			Severity: engine.SeverityCritical,
			Detail:   "Revoke the credential and remove it from the file.",
		})
	}
	return findings
}
