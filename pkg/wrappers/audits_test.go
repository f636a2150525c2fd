package wrappers

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/sysexec/sysexectest"
)

const nmapXML = `<?xml version="1.0"?>
<nmaprun>
  <host>
    <address addr="00:11:22:33:44:55" addrtype="mac"/>
    <address addr="127.0.0.1" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh"/></port>
      <port protocol="tcp" portid="25"><state state="closed"/><service name="smtp"/></port>
      <port protocol="tcp" portid="631"><state state="open"/><service name="ipp"/></port>
    </ports>
  </host>
</nmaprun>`

func TestParseNmapXMLKeepsOpenPorts(t *testing.T) {
	records, err := ParseNmapXML([]byte(nmapXML), "nmap")
	if err != nil {
		t.Fatalf("ParseNmapXML: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 open ports, got %d", len(records))
	}
	if records[0].Get("addr") != "127.0.0.1" || records[0].Get("port") != "22" || records[0].Get("service") != "ssh" {
		t.Errorf("unexpected record: %v", records[0].Fields)
	}

	findings := OpenPortFindings(records, "Open Ports")
	if findings[0].Severity != engine.SeverityHigh || findings[1].Severity != engine.SeverityMedium {
		t.Errorf("unexpected severities: %s %s", findings[0].Severity, findings[1].Severity)
	}
	if findings[0].Subject != "127.0.0.1 22/tcp" {
		t.Errorf("unexpected subject: %s", findings[0].Subject)
	}
}

func TestPortScanSource(t *testing.T) {
	fake := sysexectest.NewFake().On("nmap", "-oX -", sysexectest.Response{Stdout: nmapXML})
	records, err := (&PortScanSource{Runner: fake}).Collect(context.Background())
	if err != nil || len(records) != 2 {
		t.Fatalf("expected 2 records, got %d (%v)", len(records), err)
	}
	if fake.Calls[0] != "nmap -F 127.0.0.1 -oX -" {
		t.Errorf("unexpected call: %s", fake.Calls[0])
	}

	_, err = (&PortScanSource{Runner: sysexectest.NewFake()}).Collect(context.Background())
	if !errors.Is(err, sysexec.ErrCapabilityMissing) {
		t.Errorf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestParseLynisReport(t *testing.T) {
	data := []byte(`# Lynis Report
report_version_major=1
warning[]=AUTH-9286|Found accounts without expire date|-|-|
suggestion[]=SSH-7408|Consider hardening SSH configuration|AllowTcpForwarding (set YES to NO)|-|
suggestion[]=plain message
`)
	records := ParseLynisReport(data, "lynis")
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Get("kind") != "warning" || records[0].Get("test") != "AUTH-9286" || records[0].Get("message") != "Found accounts without expire date" {
		t.Errorf("unexpected record: %v", records[0].Fields)
	}
	if records[2].Get("test") != "" || records[2].Get("message") != "plain message" {
		t.Errorf("unexpected record: %v", records[2].Fields)
	}

	findings := HardeningFindings(records, "Hardening")
	if findings[0].Severity != engine.SeverityMedium || findings[1].Severity != engine.SeverityLow {
		t.Errorf("unexpected severities: %s %s", findings[0].Severity, findings[1].Severity)
	}
}

func TestHardeningAuditReadsReportFile(t *testing.T) {
	report := filepath.Join(t.TempDir(), "lynis-report.dat")
	fake := sysexectest.NewFake().On("lynis", "audit", sysexectest.Response{Stdout: "[+] Boot and services\n", Code: 78})

	var out bytes.Buffer
	audit := &HardeningAudit{Runner: fake, Out: &out, ReportFile: report}

	// Report missing after the run.
	if _, err := audit.Collect(context.Background()); !errors.Is(err, sysexec.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if out.String() != "[+] Boot and services\n" {
		t.Errorf("lynis output not streamed: %q", out.String())
	}
}

func TestParseGitleaksJSON(t *testing.T) {
	data := []byte(`[{"Description":"AWS Access Key","File":"deploy/env.sh","StartLine":3,"Secret":"AKIA...","RuleID":"aws-access-token","Match":"AKIA..."}]`)
	records, err := ParseGitleaksJSON(data, "gitleaks")
	if err != nil {
		t.Fatalf("ParseGitleaksJSON: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if r.Get("file") != "deploy/env.sh" || r.Get("line") != "3" || r.Get("rule") != "aws-access-token" {
		t.Errorf("unexpected record: %v", r.Fields)
	}
	if _, ok := r.Fields["secret"]; ok {
		t.Error("secret must not be copied into records")
	}

	findings := SecretFindings(records, "Exposed Credentials")
	if findings[0].Subject != "deploy/env.sh:3" || findings[0].Severity != engine.SeverityCritical {
		t.Errorf("unexpected finding: %+v", findings[0])
	}

	if empty, err := ParseGitleaksJSON(nil, "gitleaks"); err != nil || len(empty) != 0 {
		t.Errorf("empty report should mean no leaks: %v %v", empty, err)
	}
	if _, err := ParseGitleaksJSON([]byte("{"), "gitleaks"); err == nil {
		t.Error("expected decode error")
	}
}

func TestSecretScannerNotInstalled(t *testing.T) {
	_, err := (&SecretScanner{Runner: sysexectest.NewFake(), Dir: os.TempDir()}).Collect(context.Background())
	if !errors.Is(err, sysexec.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
}

func TestMissingAndProblemDevices(t *testing.T) {
	fake := sysexectest.NewFake().
		On("powershell", `$_.Status -eq "Unknown"`, sysexectest.Response{Stdout: `{"FriendlyName": null, "Class": "USB"}`}).
		On("powershell", "$_.Problem -ne $null", sysexectest.Response{Stdout: `[{"FriendlyName": "PCI Device", "Problem": 28}]`}).
		On("powershell", "Microsoft.Update.Session", sysexectest.Response{Stdout: "3\n"})

	missing, err := (&MissingDeviceSource{Runner: fake}).Collect(context.Background())
	if err != nil || len(missing) != 1 {
		t.Fatalf("missing devices: %v %v", missing, err)
	}
	if missing[0].Get("name") != "Unknown Device" || missing[0].Get("class") != "USB" || missing[0].Get("status") != MissingDriverStatus {
		t.Errorf("unexpected record: %v", missing[0].Fields)
	}

	problems, err := (&ProblemDeviceSource{Runner: fake}).Collect(context.Background())
	if err != nil || len(problems) != 1 || problems[0].Get("problem") != "28" {
		t.Fatalf("problem devices: %v %v", problems, err)
	}

	n, err := PendingDriverUpdates(context.Background(), fake)
	if err != nil || n != 3 {
		t.Errorf("PendingDriverUpdates = %d, %v", n, err)
	}
}

func TestPendingDriverUpdatesGarbage(t *testing.T) {
	fake := sysexectest.NewFake().On("powershell", "Microsoft.Update.Session", sysexectest.Response{Stdout: "Exception from HRESULT"})
	if _, err := PendingDriverUpdates(context.Background(), fake); !errors.Is(err, sysexec.ErrSourceUnavailable) {
		t.Errorf("expected ErrSourceUnavailable, got %v", err)
	}
}
