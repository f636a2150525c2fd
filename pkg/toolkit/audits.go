package toolkit

import (
	"context"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/wrappers"
)

// Audit report categories.
const (
	CategoryOpenPorts   = "Open Ports"
	CategoryHardening   = "Hardening Warnings & Suggestions"
	CategoryCredentials = "Exposed Credentials"
)

// NetworkReport lists the open ports of the local machine.
func (t *Toolkit) NetworkReport(ctx context.Context) (*engine.Report, error) {
	return t.auditReport(ctx, "NETWORK & PORT SECURITY REPORT", CategoryOpenPorts,
		&wrappers.PortScanSource{Runner: t.Runner}, wrappers.OpenPortFindings)
}

// HardeningReport runs a Lynis audit and lists its warnings and suggestions.
func (t *Toolkit) HardeningReport(ctx context.Context) (*engine.Report, error) {
	return t.auditReport(ctx, "SYSTEM HARDENING REPORT", CategoryHardening,
		&wrappers.HardeningAudit{Runner: t.Runner, Out: t.out()}, wrappers.HardeningFindings)
}

// CredentialReport searches the scan directory for hard-coded secrets.
func (t *Toolkit) CredentialReport(ctx context.Context) (*engine.Report, error) {
	return t.auditReport(ctx, "PASSWORD & CREDENTIAL AUDIT", CategoryCredentials,
		&wrappers.SecretScanner{Runner: t.Runner, Dir: t.Config.ScanDir}, wrappers.SecretFindings)
}

func (t *Toolkit) auditReport(ctx context.Context, title, category string, src wrappers.Source,
	toFindings func([]engine.Record, string) []engine.Finding) (*engine.Report, error) {
	records, notice, err := collect(ctx, src)
	if err != nil {
		return nil, err
	}
	report := engine.NewReport(title)
	report.Define(category, engine.DefaultCap)
	report.AddAll(toFindings(records, category))
	if notice != "" {
		report.Note("%s", notice)
	}
	return report, nil
}
