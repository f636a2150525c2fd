package engine

import "strings"

// Severity is the label attached to a signature and the findings it produces.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// Rank orders severities for display purposes only; reports never sort by it.
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Record is one item produced by an adapter: named text fields kept verbatim
// from the external command's output.
type Record struct {
	Source string            `json:"source"`
	Fields map[string]string `json:"fields"`
}

// NewRecord builds a record from alternating key/value pairs.
func NewRecord(source string, kv ...string) Record {
	r := Record{Source: source, Fields: make(map[string]string, len(kv)/2)}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Fields[kv[i]] = kv[i+1]
	}
	return r
}

// Get returns the named field or "".
func (r Record) Get(field string) string {
	return r.Fields[field]
}

// GetOr returns the named field, or fallback when it is missing or empty.
func (r Record) GetOr(field, fallback string) string {
	if v := r.Fields[field]; v != "" {
		return v
	}
	return fallback
}

// Finding is one reported match between a signature (or a predicate) and a record.
type Finding struct {
	Record   Record   `json:"record"`
	Subject  string   `json:"subject"`
	Category string   `json:"category"`
	Reason   string   `json:"reason"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail,omitempty"`
}
