package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/cyberusb/pkg/logger"
)

// Pack is a YAML file of extra signatures and suspicious file extensions.
type Pack struct {
	Name       string      `yaml:"name"`
	Signatures []Signature `yaml:"signatures"`
	Extensions []string    `yaml:"extensions"`
}

// SignatureSet is the immutable signature configuration handed to matchers
// and scanners. Accessors return copies.
type SignatureSet struct {
	signatures []Signature
	extensions []string
}

var defaultPatterns = []string{
	"malware",
	"trojan",
	"virus",
	"ransomware",
	"backdoor",
	"keylogger",
	"spyware",
}

var defaultExtensions = []string{
	".exe", ".bat", ".cmd", ".vbs", ".js",
	".ps1", ".sh", ".pyc", ".dll",
}

// DefaultSignatureSet holds the built-in malware keywords and extensions.
func DefaultSignatureSet() SignatureSet {
	sigs := make([]Signature, 0, len(defaultPatterns))
	for _, p := range defaultPatterns {
		sigs = append(sigs, Signature{Pattern: p, Severity: SeverityHigh})
	}
	return NewSignatureSet(sigs, defaultExtensions)
}

// NewSignatureSet copies the given signatures and extensions.
func NewSignatureSet(sigs []Signature, extensions []string) SignatureSet {
	s := SignatureSet{
		signatures: append([]Signature(nil), sigs...),
		extensions: make([]string, 0, len(extensions)),
	}
	for _, ext := range extensions {
		s.extensions = append(s.extensions, normalizeExt(ext))
	}
	return s
}

// Signatures returns the signatures in match order.
func (s SignatureSet) Signatures() []Signature {
	return append([]Signature(nil), s.signatures...)
}

// Extensions returns the suspicious extensions, lower-cased with a leading dot.
func (s SignatureSet) Extensions() []string {
	return append([]string(nil), s.extensions...)
}

// HasSuspiciousExtension reports whether name ends with one of the set's extensions.
func (s SignatureSet) HasSuspiciousExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range s.extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// With returns a new set with the pack's signatures appended after the
// existing ones and its extensions merged.
func (s SignatureSet) With(p Pack) SignatureSet {
	out := NewSignatureSet(append(s.Signatures(), p.Signatures...), s.extensions)
	seen := make(map[string]bool, len(out.extensions))
	for _, ext := range out.extensions {
		seen[ext] = true
	}
	for _, ext := range p.Extensions {
		ext = normalizeExt(ext)
		if !seen[ext] {
			seen[ext] = true
			out.extensions = append(out.extensions, ext)
		}
	}
	return out
}

// LoadSignaturePacks reads every .yaml/.yml pack in dir and layers them over
// base in file-name order.
func LoadSignaturePacks(base SignatureSet, dir string) (SignatureSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return base, err
	}

	set := base
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return base, err
		}

		var p Pack
		if err := yaml.Unmarshal(data, &p); err != nil {
			return base, fmt.Errorf("failed to parse %s: %w", entry.Name(), err)
		}
		for _, sig := range p.Signatures {
			if sig.Pattern == "" {
				return base, fmt.Errorf("%s: signature %q has an empty pattern", entry.Name(), sig.Name)
			}
		}
		set = set.With(p)
		logger.Debugf("Loaded signature pack: %s (%d signatures)", p.Name, len(p.Signatures))
	}
	return set, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
