package wrappers

import (
	"bufio"
	"context"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/sysexec"
)

// ClamAVScanner runs clamscan recursively over Dir and reports infected files.
type ClamAVScanner struct {
	Runner sysexec.Runner
	Dir    string
}

func (c *ClamAVScanner) Name() string {
	return "clamav"
}

// Collect returns {path, signature} records for every "FOUND" line.
// clamscan exits 1 when it finds something; that is a result, not a failure.
func (c *ClamAVScanner) Collect(ctx context.Context) ([]engine.Record, error) {
	if _, err := c.Runner.LookPath("clamscan"); err != nil {
		return []engine.Record{}, sysexec.Missing("ClamAV (clamscan)", err)
	}

	out, err := c.Runner.Output(ctx, "clamscan", "-r", "--bell", "-i", c.Dir)
	if err != nil {
		if code, ok := sysexec.ExitCode(err); !ok || code != 1 {
			return []engine.Record{}, sysexec.Unavailable(c.Name(), err)
		}
	}
	return ParseClamAV(string(out), c.Name()), nil
}

// ParseClamAV extracts "<path>: <signature> FOUND" lines. The summary block
// clamscan prints afterwards is ignored.
func ParseClamAV(output, source string) []engine.Record {
	records := []engine.Record{}
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasSuffix(line, " FOUND") {
			continue
		}
		line = strings.TrimSuffix(line, " FOUND")
		idx := strings.LastIndex(line, ": ")
		if idx <= 0 {
			continue
		}
		records = append(records, engine.NewRecord(source,
			"path", line[:idx],
			"signature", line[idx+2:],
		))
	}
	return records
}
