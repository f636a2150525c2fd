package wrappers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/sysexec"
)

// MissingDriverStatus is the status given to devices Windows cannot bind a driver to.
const MissingDriverStatus = "Driver missing or unknown"

const (
	missingDeviceQuery = `Get-PnpDevice | Where-Object {$_.Status -eq "Unknown"} | Select-Object FriendlyName, Class | ConvertTo-Json`
	problemDeviceQuery = `Get-PnpDevice | Where-Object {$_.Problem -ne $null} | Select-Object FriendlyName, Problem | ConvertTo-Json`
	pendingDriverQuery = `$Session = New-Object -ComObject Microsoft.Update.Session; $Searcher = $Session.CreateUpdateSearcher(); $Result = $Searcher.Search("IsInstalled=0 and Type='Driver'"); Write-Host $Result.Updates.Count`
)

// MissingDeviceSource lists PnP devices in the Unknown state.
type MissingDeviceSource struct {
	Runner sysexec.Runner
}

func (s *MissingDeviceSource) Name() string {
	return "missing-devices"
}

// Collect returns {name, class, status} records.
func (s *MissingDeviceSource) Collect(ctx context.Context) ([]engine.Record, error) {
	out, err := runPowerShell(ctx, s.Runner, s.Name(), missingDeviceQuery)
	if err != nil {
		return []engine.Record{}, err
	}

	items, err := decodePSJSON(out)
	if err != nil {
		logger.Warnf("Could not decode device information: %v", err)
		return []engine.Record{}, nil
	}

	records := make([]engine.Record, 0, len(items))
	for _, item := range items {
		records = append(records, engine.NewRecord(s.Name(),
			"name", orDefault(item["FriendlyName"], "Unknown Device"),
			"class", orDefault(item["Class"], "Unknown"),
			"status", MissingDriverStatus,
		))
	}
	return records, nil
}

// ProblemDeviceSource lists PnP devices reporting a problem code.
type ProblemDeviceSource struct {
	Runner sysexec.Runner
}

func (s *ProblemDeviceSource) Name() string {
	return "problem-devices"
}

// Collect returns {name, problem} records.
func (s *ProblemDeviceSource) Collect(ctx context.Context) ([]engine.Record, error) {
	out, err := runPowerShell(ctx, s.Runner, s.Name(), problemDeviceQuery)
	if err != nil {
		return []engine.Record{}, err
	}

	items, err := decodePSJSON(out)
	if err != nil {
		logger.Warnf("Could not decode device information: %v", err)
		return []engine.Record{}, nil
	}

	records := make([]engine.Record, 0, len(items))
	for _, item := range items {
		records = append(records, engine.NewRecord(s.Name(),
			"name", orDefault(item["FriendlyName"], "Unknown"),
			"problem", orDefault(item["Problem"], "Unknown"),
		))
	}
	return records, nil
}

// PendingDriverUpdates asks the Windows Update agent how many driver updates
// are available but not installed.
func PendingDriverUpdates(ctx context.Context, r sysexec.Runner) (int, error) {
	out, err := runPowerShell(ctx, r, "windows-update", pendingDriverQuery)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		return 0, sysexec.Unavailable("windows-update", fmt.Errorf("unexpected update count %q", strings.TrimSpace(string(out))))
	}
	return n, nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
