package engine

import "testing"

func TestMatcherFirstSignatureWins(t *testing.T) {
	// "trojan" and "trojan-dropper" both occur in the text; list order decides.
	sigs := []Signature{
		{Pattern: "trojan", Severity: SeverityHigh},
		{Pattern: "trojan-dropper", Severity: SeverityCritical},
	}
	m, err := NewMatcher(sigs, MatchOptions{Fields: []string{"cmdline"}, SubjectField: "name", Category: "Processes", Reason: "Process contains '%s'"})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}

	rec := NewRecord("process", "pid", "42", "name", "evil", "cmdline", "/opt/TROJAN-dropper --run")
	f, ok := m.Match(rec)
	if !ok {
		t.Fatal("expected a match")
	}
	if f.Reason != "Process contains 'trojan'" {
		t.Errorf("unexpected reason %q", f.Reason)
	}
	if f.Severity != SeverityHigh {
		t.Errorf("expected high severity, got %s", f.Severity)
	}
	if f.Subject != "evil" || f.Category != "Processes" {
		t.Errorf("unexpected subject/category: %q %q", f.Subject, f.Category)
	}

	// Reversing the list reverses the attribution.
	rev, _ := NewMatcher([]Signature{sigs[1], sigs[0]}, MatchOptions{Fields: []string{"cmdline"}})
	f, _ = rev.Match(rec)
	if f.Severity != SeverityCritical {
		t.Errorf("expected critical after reordering, got %s", f.Severity)
	}
}

func TestMatcherSearchesFieldsInOrder(t *testing.T) {
	m, _ := NewMatcher([]Signature{{Pattern: "keylogger"}}, MatchOptions{Fields: []string{"name", "cmdline"}})

	tests := []struct {
		name string
		rec  Record
		want bool
	}{
		{"in name", NewRecord("p", "name", "KeyLogger.exe"), true},
		{"in cmdline", NewRecord("p", "name", "svc", "cmdline", "run keylogger"), true},
		{"not designated", NewRecord("p", "path", "keylogger"), false},
		{"no match", NewRecord("p", "name", "bash", "cmdline", "-l"), false},
		{"empty record", NewRecord("p"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := m.Match(tt.rec); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatcherRegex(t *testing.T) {
	m, err := NewMatcher([]Signature{{Name: "powershell-encoded", Pattern: `-enc(odedcommand)?\s+[A-Za-z0-9+/=]{8,}`, Regex: true, Severity: SeverityMedium}},
		MatchOptions{Fields: []string{"cmdline"}, Reason: "Process contains '%s'"})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	f, ok := m.Match(NewRecord("p", "cmdline", "powershell.exe -EncodedCommand SQBFAFgAIAAoAE4A"))
	if !ok {
		t.Fatal("expected regex to match")
	}
	if f.Reason != "Process contains 'powershell-encoded'" {
		t.Errorf("unexpected reason %q", f.Reason)
	}
	if f.Subject != "Unknown" {
		t.Errorf("expected fallback subject, got %q", f.Subject)
	}
}

func TestNewMatcherRejectsBadSignatures(t *testing.T) {
	if _, err := NewMatcher([]Signature{{Pattern: "("}}, MatchOptions{}); err != nil {
		t.Error("literal '(' must be accepted")
	}
	if _, err := NewMatcher([]Signature{{Pattern: "(", Regex: true}}, MatchOptions{}); err == nil {
		t.Error("expected invalid regex error")
	}
	if _, err := NewMatcher([]Signature{{Name: "blank"}}, MatchOptions{}); err == nil {
		t.Error("expected empty pattern error")
	}
}

func TestScanKeepsInputOrder(t *testing.T) {
	m, _ := NewMatcher(DefaultSignatureSet().Signatures(), MatchOptions{Fields: []string{"content"}, SubjectField: "path"})
	recs := []Record{
		NewRecord("file", "path", "c", "content", "spyware"),
		NewRecord("file", "path", "a", "content", "clean"),
		NewRecord("file", "path", "b", "content", "virus"),
	}
	got := m.Scan(recs)
	if len(got) != 2 || got[0].Subject != "c" || got[1].Subject != "b" {
		t.Errorf("unexpected scan result: %+v", got)
	}
}
