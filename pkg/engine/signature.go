package engine

import (
	"fmt"
	"regexp"
	"strings"
)

// Signature is a literal or regular-expression pattern with a severity label.
type Signature struct {
	Name     string   `yaml:"name" json:"name"`
	Pattern  string   `yaml:"pattern" json:"pattern"`
	Regex    bool     `yaml:"regex" json:"regex"`
	Severity Severity `yaml:"severity" json:"severity"`
}

// Label is the text used in reasons: the name if set, else the pattern.
func (s Signature) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Pattern
}

type compiledSignature struct {
	sig     Signature
	literal string
	re      *regexp.Regexp
}

func (c compiledSignature) matches(text string) bool {
	if c.re != nil {
		return c.re.MatchString(text)
	}
	return strings.Contains(strings.ToLower(text), c.literal)
}

// MatchOptions configures what a Matcher looks at and how it labels findings.
type MatchOptions struct {
	// Fields are the record fields searched, in order.
	Fields []string
	// SubjectField names the field shown as the finding's subject.
	SubjectField string
	// Category is copied onto every finding.
	Category string
	// Reason is a format string receiving the signature label, e.g.
	// "Contains '%s' signature".
	Reason string
}

// Matcher evaluates an ordered signature list against records.
type Matcher struct {
	sigs []compiledSignature
	opts MatchOptions
}

// NewMatcher compiles signatures in the order given. The order is preserved
// and decides which signature is reported when several would match.
func NewMatcher(signatures []Signature, opts MatchOptions) (*Matcher, error) {
	if opts.Reason == "" {
		opts.Reason = "Matches '%s'"
	}
	m := &Matcher{opts: opts, sigs: make([]compiledSignature, 0, len(signatures))}
	for _, s := range signatures {
		if s.Pattern == "" {
			return nil, fmt.Errorf("signature %q has an empty pattern", s.Name)
		}
		if s.Severity == "" {
			s.Severity = SeverityHigh
		}
		c := compiledSignature{sig: s}
		if s.Regex {
			re, err := regexp.Compile("(?i)" + s.Pattern)
			if err != nil {
				return nil, fmt.Errorf("signature %q: %w", s.Label(), err)
			}
			c.re = re
		} else {
			c.literal = strings.ToLower(s.Pattern)
		}
		m.sigs = append(m.sigs, c)
	}
	return m, nil
}

// Match returns the finding for the first signature found in any of the
// record's designated fields.
func (m *Matcher) Match(r Record) (Finding, bool) {
	for _, c := range m.sigs {
		for _, field := range m.opts.Fields {
			text, ok := r.Fields[field]
			if !ok || text == "" {
				continue
			}
			if c.matches(text) {
				return Finding{
					Record:   r,
					Subject:  r.GetOr(m.opts.SubjectField, "Unknown"),
					Category: m.opts.Category,
					Reason:   fmt.Sprintf(m.opts.Reason, c.sig.Label()),
					Severity: c.sig.Severity,
				}, true
			}
		}
	}
	return Finding{}, false
}

// Scan matches every record in order and returns findings in input order.
func (m *Matcher) Scan(records []Record) []Finding {
	var findings []Finding
	for _, r := range records {
		if f, ok := m.Match(r); ok {
			findings = append(findings, f)
		}
	}
	return findings
}
