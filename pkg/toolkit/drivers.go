package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/wrappers"
)

// Driver report categories.
const (
	CategoryOutdated = "Outdated Drivers (older than 6 months)"
	CategoryMissing  = "Devices with Missing Drivers"
)

// DriverReport collects the target's drivers and builds the status report.
// On Windows it flags stale and missing drivers; on Linux it lists the
// loaded modules and the kernel release.
func (t *Toolkit) DriverReport(ctx context.Context) (*engine.Report, error) {
	report := engine.NewReport("DRIVER STATUS REPORT")

	drivers, _, err := collect(ctx, t.Target.DriverSource(t.Runner))
	if err != nil {
		return nil, err
	}

	switch t.Target.(type) {
	case platform.WindowsTarget:
		outdated := engine.OutdatedDrivers(drivers, t.now(), CategoryOutdated)

		missingRecords, _, err := collect(ctx, &wrappers.MissingDeviceSource{Runner: t.Runner})
		if err != nil {
			return nil, err
		}

		report.Summary("Total Drivers Found", len(drivers))
		report.Summary("Outdated Drivers", len(outdated))
		report.Summary("Missing Drivers", len(missingRecords))

		report.Define(CategoryOutdated, t.Config.OutdatedDisplayCap)
		report.Define(CategoryMissing, engine.DefaultCap)
		report.AddAll(outdated)
		for _, m := range missingRecords {
			report.Add(engine.Finding{
				Record:   m,
				Subject:  fmt.Sprintf("%s (%s)", m.Get("name"), m.Get("class")),
				Category: CategoryMissing,
				Reason:   m.Get("status"),
				Severity: engine.SeverityHigh,
			})
		}

	default:
		report.Summary("Loaded Kernel Modules", len(drivers))
		if len(drivers) > 0 {
			report.Note("System Information:")
		}
		for _, d := range drivers {
			report.Note("  - %s: %s", d.GetOr("name", "Unknown"), d.Get("version"))
		}
	}
	return report, nil
}

// Drivers prints the driver report. When Windows drivers are stale or
// missing it goes on to check Windows Update and Device Manager; in JSON
// mode those results become notes of the report instead.
func (t *Toolkit) Drivers(ctx context.Context) error {
	report, err := t.DriverReport(ctx)
	if err != nil {
		return err
	}

	_, windows := t.Target.(platform.WindowsTarget)
	followUp := windows && (report.Count(CategoryOutdated) > 0 || report.Count(CategoryMissing) > 0)
	if t.Format == FormatJSON {
		if followUp {
			if err := t.addUpdateNotes(ctx, report); err != nil {
				return err
			}
		}
		return t.Print(report)
	}

	if err := t.Print(report); err != nil {
		return err
	}
	if !followUp {
		return nil
	}
	t.printf("\n%s\n", strings.Repeat("=", engine.BannerWidth))
	return t.UpdateDrivers(ctx)
}

// addUpdateNotes records pending driver updates and problem devices on the
// report without prompting.
func (t *Toolkit) addUpdateNotes(ctx context.Context, report *engine.Report) error {
	count, err := wrappers.PendingDriverUpdates(ctx, t.Runner)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warnf("Could not query Windows Update: %v", err)
	} else {
		report.Note("Driver updates available via Windows Update: %d", count)
	}

	problems, _, err := collect(ctx, &wrappers.ProblemDeviceSource{Runner: t.Runner})
	if err != nil {
		return err
	}
	for _, p := range problems {
		report.Note("Device with issues: %s (problem code %s)", p.Get("name"), p.Get("problem"))
	}
	return nil
}

// UpdateDrivers reports pending driver updates from Windows Update and the
// devices Device Manager flags with a problem code.
func (t *Toolkit) UpdateDrivers(ctx context.Context) error {
	t.printf("Checking for Windows driver updates...\n")

	count, err := wrappers.PendingDriverUpdates(ctx, t.Runner)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warnf("Could not query Windows Update: %v", err)
	} else {
		t.printf("Found %d driver updates available via Windows Update\n", count)
		if count > 0 && t.confirm("Would you like to install these updates?") {
			t.printf("Note: Driver updates will be installed through Windows Update\n")
			t.printf("Please run Windows Update from Settings for complete installation\n")
		}
	}

	t.printf("\nChecking Device Manager for driver issues...\n")
	problems, _, err := collect(ctx, &wrappers.ProblemDeviceSource{Runner: t.Runner})
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		t.printf("Found %d devices with issues:\n", len(problems))
		for _, p := range problems {
			t.printf("  - %s: Problem code %s\n", p.Get("name"), p.Get("problem"))
		}
	}
	return nil
}
