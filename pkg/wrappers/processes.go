package wrappers

import (
	"bufio"
	"context"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/sysexec"
)

const windowsProcessQuery = "Get-CimInstance Win32_Process | Select-Object ProcessId, ParentProcessId, Name, CommandLine | ConvertTo-Json"

// LinuxProcessSource enumerates processes with ps.
type LinuxProcessSource struct {
	Runner sysexec.Runner
}

func (s *LinuxProcessSource) Name() string {
	return "processes"
}

// Collect returns {pid, ppid, name, cmdline} records. Names and command lines
// come from two ps queries joined on pid, since comm may contain spaces. A
// missing ps binary is a capability problem rather than a source failure.
func (s *LinuxProcessSource) Collect(ctx context.Context) ([]engine.Record, error) {
	names, err := s.Runner.Output(ctx, "ps", "-eo", "pid=,ppid=,comm=")
	if err != nil {
		if sysexec.IsNotFound(err) {
			return []engine.Record{}, sysexec.Missing("process enumeration (ps)", err)
		}
		return []engine.Record{}, sysexec.Unavailable(s.Name(), err)
	}
	args, err := s.Runner.Output(ctx, "ps", "-eo", "pid=,args=")
	if err != nil {
		if ctx.Err() != nil {
			return []engine.Record{}, sysexec.Unavailable(s.Name(), err)
		}
		logger.Warnf("Could not read process command lines: %v", err)
		args = nil
	}
	return ParsePs(string(names), string(args), s.Name()), nil
}

// ParsePs joins "pid ppid comm" lines with "pid args" lines. Lines without a
// numeric pid are dropped; a process missing from args (it exited between
// the two queries) keeps an empty cmdline.
func ParsePs(names, args, source string) []engine.Record {
	cmdlines := make(map[string]string)
	eachLine(args, func(line string) {
		head, rest := leadingFields(line, 1)
		if head != nil && isDigits(head[0]) {
			cmdlines[head[0]] = rest
		}
	})

	records := []engine.Record{}
	eachLine(names, func(line string) {
		head, name := leadingFields(line, 2)
		if head == nil || !isDigits(head[0]) || !isDigits(head[1]) || name == "" {
			return
		}
		records = append(records, engine.NewRecord(source,
			"pid", head[0],
			"ppid", head[1],
			"name", name,
			"cmdline", cmdlines[head[0]],
		))
	})
	return records
}

func eachLine(output string, fn func(string)) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		fn(scanner.Text())
	}
}

// leadingFields splits off the first n whitespace-separated fields and
// returns them with the trimmed remainder, which may itself hold spaces.
// head is nil when the line has fewer than n fields.
func leadingFields(line string, n int) (head []string, rest string) {
	rest = strings.TrimSpace(line)
	for i := 0; i < n; i++ {
		if rest == "" {
			return nil, ""
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			head, rest = append(head, rest), ""
			continue
		}
		head = append(head, rest[:end])
		rest = strings.TrimLeft(rest[end:], " \t")
	}
	return head, rest
}

// WindowsProcessSource enumerates processes through CIM.
type WindowsProcessSource struct {
	Runner sysexec.Runner
}

func (s *WindowsProcessSource) Name() string {
	return "processes"
}

func (s *WindowsProcessSource) Collect(ctx context.Context) ([]engine.Record, error) {
	out, err := s.Runner.Output(ctx, powershell, psArgs(windowsProcessQuery)...)
	if err != nil {
		if sysexec.IsNotFound(err) {
			return []engine.Record{}, sysexec.Missing("process enumeration (powershell)", err)
		}
		return []engine.Record{}, sysexec.Unavailable(s.Name(), err)
	}

	items, err := decodePSJSON(out)
	if err != nil {
		logger.Warnf("Could not decode process list: %v", err)
		return []engine.Record{}, nil
	}

	records := make([]engine.Record, 0, len(items))
	for _, item := range items {
		records = append(records, mapRecord(s.Name(), item, [][2]string{
			{"ProcessId", "pid"},
			{"ParentProcessId", "ppid"},
			{"Name", "name"},
			{"CommandLine", "cmdline"},
		}))
	}
	return records, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
