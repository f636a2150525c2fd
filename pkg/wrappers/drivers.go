package wrappers

import (
	"bufio"
	"context"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/sysexec"
)

const windowsDriverQuery = "Get-WmiObject Win32_PnPSignedDriver | Select-Object DeviceName, DriverVersion, DriverDate | ConvertTo-Json"

// WindowsDriverSource lists signed PnP drivers through WMI.
type WindowsDriverSource struct {
	Runner sysexec.Runner
}

func (s *WindowsDriverSource) Name() string {
	return "windows-drivers"
}

// Collect returns {device_name, driver_version, driver_date} records. Output
// that cannot be decoded yields no records and only a warning.
func (s *WindowsDriverSource) Collect(ctx context.Context) ([]engine.Record, error) {
	out, err := runPowerShell(ctx, s.Runner, s.Name(), windowsDriverQuery)
	if err != nil {
		return []engine.Record{}, err
	}

	items, err := decodePSJSON(out)
	if err != nil {
		logger.Warnf("Could not decode driver information: %v", err)
		return []engine.Record{}, nil
	}

	records := make([]engine.Record, 0, len(items))
	for _, item := range items {
		records = append(records, mapRecord(s.Name(), item, [][2]string{
			{"DeviceName", "device_name"},
			{"DriverVersion", "driver_version"},
			{"DriverDate", "driver_date"},
		}))
	}
	return records, nil
}

// LinuxModuleSource lists loaded kernel modules and the running kernel release.
type LinuxModuleSource struct {
	Runner sysexec.Runner
}

func (s *LinuxModuleSource) Name() string {
	return "linux-modules"
}

// Collect returns one {name, size, used_by} record per lsmod line followed by
// a synthetic {name: Kernel, version, type: system} record from uname -r.
// If lsmod fails the kernel record is still attempted.
func (s *LinuxModuleSource) Collect(ctx context.Context) ([]engine.Record, error) {
	records := []engine.Record{}

	var lsmodErr error
	out, err := s.Runner.Output(ctx, "lsmod")
	if err != nil {
		lsmodErr = sysexec.Unavailable(s.Name(), err)
	} else {
		records = append(records, ParseLsmod(string(out), s.Name())...)
	}

	kernel, err := s.Runner.Output(ctx, "uname", "-r")
	if err != nil {
		logger.Debugf("uname -r failed: %v", err)
	} else if release := strings.TrimSpace(string(kernel)); release != "" {
		records = append(records, engine.NewRecord(s.Name(),
			"name", "Kernel",
			"version", release,
			"type", "system",
		))
	}

	return records, lsmodErr
}

// ParseLsmod parses lsmod output, skipping the header line and any line with
// fewer than three columns.
func ParseLsmod(output, source string) []engine.Record {
	var records []engine.Record
	scanner := bufio.NewScanner(strings.NewReader(strings.TrimSpace(output)))
	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < 3 {
			continue
		}
		rec := engine.NewRecord(source,
			"name", parts[0],
			"size", parts[1],
			"used_by", parts[2],
		)
		if len(parts) > 3 {
			rec.Fields["used_by_modules"] = strings.Join(parts[3:], " ")
		}
		records = append(records, rec)
	}
	return records
}
