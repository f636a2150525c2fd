package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const (
	// DefaultCap is the display cap for categories added without Define.
	DefaultCap = 10
	// BannerWidth is the width of the "=" banner lines.
	BannerWidth = 60
)

// Category is an ordered group of findings with a display cap.
type Category struct {
	Name     string    `json:"name"`
	Cap      int       `json:"-"`
	Findings []Finding `json:"findings"`
}

// SummaryLine is a "label: value" count line printed above the categories.
type SummaryLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Report accumulates the findings of one scan and renders them.
type Report struct {
	Title string

	mu         sync.Mutex
	summary    []SummaryLine
	categories []*Category
	index      map[string]*Category
	notes      []string
}

// NewReport creates an empty report.
func NewReport(title string) *Report {
	return &Report{Title: title, index: make(map[string]*Category)}
}

// Define declares a category and its display cap. Categories render in the
// order they are first defined or added to.
func (r *Report) Define(name string, cap int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.index[name]; ok {
		c.Cap = cap
		return
	}
	r.define(name, cap)
}

func (r *Report) define(name string, cap int) *Category {
	c := &Category{Name: name, Cap: cap, Findings: make([]Finding, 0)}
	r.categories = append(r.categories, c)
	r.index[name] = c
	return c
}

// Summary appends a summary line.
func (r *Report) Summary(label string, value interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = append(r.summary, SummaryLine{Label: label, Value: fmt.Sprint(value)})
}

// Note appends a free-form line printed after the categories.
func (r *Report) Note(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, fmt.Sprintf(format, args...))
}

// Add appends a finding to its category. Duplicates are kept.
func (r *Report) Add(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.index[f.Category]
	if !ok {
		c = r.define(f.Category, DefaultCap)
	}
	c.Findings = append(c.Findings, f)
}

// AddAll appends findings in order.
func (r *Report) AddAll(findings []Finding) {
	for _, f := range findings {
		r.Add(f)
	}
}

// Count returns the true number of findings in a category.
func (r *Report) Count(category string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.index[category]; ok {
		return len(c.Findings)
	}
	return 0
}

// Total returns the number of findings across all categories.
func (r *Report) Total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.categories {
		n += len(c.Findings)
	}
	return n
}

// Findings returns all findings, category by category, in insertion order.
func (r *Report) Findings() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Finding
	for _, c := range r.categories {
		out = append(out, c.Findings...)
	}
	return out
}

// Render returns the fixed-format text form of the report.
func (r *Report) Render() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	banner := strings.Repeat("=", BannerWidth)
	var sb strings.Builder
	sb.WriteString(banner + "\n")
	sb.WriteString(r.Title + "\n")
	sb.WriteString(banner + "\n")

	if len(r.summary) > 0 {
		sb.WriteString("\n")
		for _, s := range r.summary {
			sb.WriteString(fmt.Sprintf("%s: %s\n", s.Label, s.Value))
		}
	}

	for _, c := range r.categories {
		sb.WriteString(fmt.Sprintf("\n%s: %d\n", c.Name, len(c.Findings)))
		shown := c.Findings
		if c.Cap >= 0 && len(shown) > c.Cap {
			shown = shown[:c.Cap]
		}
		for _, f := range shown {
			sb.WriteString(fmt.Sprintf("  - %s\n", f.Subject))
			if f.Detail != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", f.Detail))
			}
			sb.WriteString(fmt.Sprintf("    Reason: %s\n", f.Reason))
			sb.WriteString(fmt.Sprintf("    Severity: %s\n", f.Severity))
		}
		if hidden := len(c.Findings) - len(shown); hidden > 0 {
			sb.WriteString(fmt.Sprintf("  ... and %d more.\n", hidden))
		}
	}

	if len(r.notes) > 0 {
		sb.WriteString("\n")
		for _, n := range r.notes {
			sb.WriteString(n + "\n")
		}
	}

	sb.WriteString("\n" + banner + "\n")
	return sb.String()
}

type jsonReport struct {
	Title      string        `json:"title"`
	Summary    []SummaryLine `json:"summary"`
	Categories []jsonCat     `json:"categories"`
	Notes      []string      `json:"notes,omitempty"`
}

type jsonCat struct {
	Name     string    `json:"name"`
	Total    int       `json:"total"`
	Findings []Finding `json:"findings"`
}

// RenderJSON returns the structured form of the report. Caps do not apply.
func (r *Report) RenderJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := jsonReport{Title: r.Title, Summary: r.summary, Notes: r.notes}
	if out.Summary == nil {
		out.Summary = []SummaryLine{}
	}
	out.Categories = make([]jsonCat, 0, len(r.categories))
	for _, c := range r.categories {
		out.Categories = append(out.Categories, jsonCat{Name: c.Name, Total: len(c.Findings), Findings: c.Findings})
	}
	return json.MarshalIndent(out, "", "  ")
}
