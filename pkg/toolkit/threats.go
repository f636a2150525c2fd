package toolkit

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/wrappers"
)

// Threat report categories.
const (
	CategoryFiles     = "Suspicious Files Found"
	CategoryProcesses = "Suspicious Processes Found"
	CategoryClamAV    = "ClamAV Detections"
)

// ThreatOptions selects what a threat scan covers.
type ThreatOptions struct {
	Dir string
	// ClamAV also runs clamscan over Dir.
	ClamAV bool
	// Hash adds the MD5 of every flagged file to its entry.
	Hash bool
}

// ThreatReport scans Dir for suspicious files, checks running processes and
// optionally runs ClamAV. Collection runs concurrently; findings are added
// afterwards in a fixed order so attribution and ordering never vary.
func (t *Toolkit) ThreatReport(ctx context.Context, opts ThreatOptions) (*engine.Report, error) {
	fileMatcher, err := engine.NewMatcher(t.Signatures.Signatures(), engine.MatchOptions{
		Fields:       []string{"content"},
		SubjectField: "path",
		Category:     CategoryFiles,
		Reason:       "Contains '%s' signature",
	})
	if err != nil {
		return nil, err
	}
	procMatcher, err := engine.NewMatcher(t.Signatures.Signatures(), engine.MatchOptions{
		Fields:   []string{"cmdline", "name"},
		Category: CategoryProcesses,
		Reason:   "Process contains '%s'",
	})
	if err != nil {
		return nil, err
	}

	report := engine.NewReport("THREAT DETECTION REPORT")
	report.Define(CategoryFiles, engine.DefaultCap)
	report.Define(CategoryProcesses, engine.DefaultCap)
	if opts.ClamAV {
		report.Define(CategoryClamAV, engine.DefaultCap)
	}

	sources := []wrappers.Source{
		&wrappers.DirectoryScanner{Dir: opts.Dir, Signatures: t.Signatures},
		t.Target.ProcessSource(t.Runner),
	}
	if opts.ClamAV {
		sources = append(sources, &wrappers.ClamAVScanner{Runner: t.Runner, Dir: opts.Dir})
	}

	// Each goroutine owns one slot of results and notices.
	results := make([][]engine.Record, len(sources))
	notices := make([]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			records, notice, err := collect(gctx, src)
			results[i], notices[i] = records, notice
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, n := range notices {
		if n != "" {
			report.Note("%s", n)
		}
	}

	files, procs := results[0], t.withoutSelf(results[1])
	report.Summary("Files examined", len(files))
	report.Summary("Processes examined", len(procs))

	for _, f := range fileMatcher.Scan(files) {
		if opts.Hash {
			if sum, err := wrappers.HashFile(f.Record.Get("path")); err == nil {
				f.Detail = "MD5: " + sum
			} else {
				logger.Debugf("Cannot hash %s: %v", f.Record.Get("path"), err)
			}
		}
		report.Add(f)
	}
	for _, f := range procMatcher.Scan(procs) {
		f.Subject = fmt.Sprintf("PID %s: %s", f.Record.Get("pid"), f.Record.GetOr("name", "Unknown"))
		report.Add(f)
	}
	if opts.ClamAV {
		for _, r := range results[2] {
			report.Add(engine.Finding{
				Record:   r,
				Subject:  r.Get("path"),
				Category: CategoryClamAV,
				Reason:   fmt.Sprintf("ClamAV signature %s", r.Get("signature")),
				Severity: engine.SeverityCritical,
			})
		}
	}
	return report, nil
}

// withoutSelf drops the toolkit's own process and the commands it spawned,
// whose arguments repeat the scanned path.
func (t *Toolkit) withoutSelf(procs []engine.Record) []engine.Record {
	self := strconv.Itoa(t.pid())
	out := procs[:0:0]
	for _, p := range procs {
		if p.Get("pid") == self || p.Get("ppid") == self {
			continue
		}
		out = append(out, p)
	}
	return out
}
