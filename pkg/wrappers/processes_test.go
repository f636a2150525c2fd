package wrappers

import (
	"context"
	"errors"
	"testing"

	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/sysexec/sysexectest"
)

func TestParsePs(t *testing.T) {
	names := `    1     0 systemd
  812     1 sshd
 4242  3001 Web Content
 4250  3001 Isolated Web Co
   77     2 kworker/0:1
garbage line
`
	args := `    1 /sbin/init splash
  812 sshd: /usr/sbin/sshd -D [listener]
 4242 /usr/lib/firefox/firefox -contentproc -childID 3
 4250 /usr/lib/firefox/firefox -contentproc -isForBrowser
`
	records := ParsePs(names, args, "processes")
	if len(records) != 5 {
		t.Fatalf("expected 5 records, got %d: %v", len(records), records)
	}

	tests := []struct {
		pid, ppid, name, cmdline string
	}{
		{"1", "0", "systemd", "/sbin/init splash"},
		{"812", "1", "sshd", "sshd: /usr/sbin/sshd -D [listener]"},
		{"4242", "3001", "Web Content", "/usr/lib/firefox/firefox -contentproc -childID 3"},
		{"4250", "3001", "Isolated Web Co", "/usr/lib/firefox/firefox -contentproc -isForBrowser"},
		{"77", "2", "kworker/0:1", ""},
	}
	for i, tt := range tests {
		r := records[i]
		if r.Get("pid") != tt.pid || r.Get("ppid") != tt.ppid || r.Get("name") != tt.name || r.Get("cmdline") != tt.cmdline {
			t.Errorf("record %d = %v, want %+v", i, r.Fields, tt)
		}
	}
}

func TestLinuxProcessSourceJoinsQueries(t *testing.T) {
	fake := sysexectest.NewFake().
		On("ps", "comm=", sysexectest.Response{Stdout: " 4242  3001 Web Content\n"}).
		On("ps", "args=", sysexectest.Response{Stdout: " 4242 /usr/lib/firefox/firefox -contentproc\n"})

	records, err := (&LinuxProcessSource{Runner: fake}).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 1 || records[0].Get("name") != "Web Content" || records[0].Get("cmdline") != "/usr/lib/firefox/firefox -contentproc" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestLinuxProcessSourceArgsFailureKeepsNames(t *testing.T) {
	fake := sysexectest.NewFake().
		On("ps", "comm=", sysexectest.Response{Stdout: "1 0 systemd\n"}).
		On("ps", "args=", sysexectest.Response{Code: 1})

	records, err := (&LinuxProcessSource{Runner: fake}).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 1 || records[0].Get("name") != "systemd" || records[0].Get("cmdline") != "" {
		t.Errorf("unexpected records: %v", records)
	}
}

func TestLinuxProcessSourceMissingPs(t *testing.T) {
	records, err := (&LinuxProcessSource{Runner: sysexectest.NewFake()}).Collect(context.Background())
	if !errors.Is(err, sysexec.ErrCapabilityMissing) {
		t.Fatalf("expected ErrCapabilityMissing, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %v", records)
	}
}

func TestLinuxProcessSourceFailure(t *testing.T) {
	fake := sysexectest.NewFake().On("ps", "", sysexectest.Response{Code: 1})
	_, err := (&LinuxProcessSource{Runner: fake}).Collect(context.Background())
	if !errors.Is(err, sysexec.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestWindowsProcessSource(t *testing.T) {
	fake := sysexectest.NewFake().On("powershell", "Win32_Process", sysexectest.Response{Stdout: `[
  {"ProcessId": 4, "Name": "System", "CommandLine": null},
  {"ProcessId": 7312, "ParentProcessId": 640, "Name": "evil.exe", "CommandLine": "C:\\tmp\\evil.exe --keylogger"}
]`})

	records, err := (&WindowsProcessSource{Runner: fake}).Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Get("pid") != "4" || records[0].Get("cmdline") != "" {
		t.Errorf("unexpected record: %v", records[0].Fields)
	}
	if records[1].Get("ppid") != "640" {
		t.Errorf("parent pid lost: %v", records[1].Fields)
	}
	if records[1].Get("name") != "evil.exe" || records[1].Get("cmdline") != `C:\tmp\evil.exe --keylogger` {
		t.Errorf("unexpected record: %v", records[1].Fields)
	}
}
