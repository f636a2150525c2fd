package toolkit

import (
	"context"
	"fmt"

	"github.com/user/cyberusb/pkg/cleanup"
	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/platform"
)

// CategoryLargeFiles lists the biggest files found under the scan directory.
const CategoryLargeFiles = "Large Files"

// CleanupReport removes temp and cache files (or counts them when dryRun),
// then adds disk usage and the largest files under the scan directory.
func (t *Toolkit) CleanupReport(ctx context.Context, dryRun bool) (*engine.Report, error) {
	title := "SYSTEM CLEANUP REPORT"
	if dryRun {
		title += " (DRY RUN)"
	}
	report := engine.NewReport(title)
	cleaner := &cleanup.Cleaner{DryRun: dryRun}

	logger.Infof("1. Cleaning temporary files...")
	temp, err := cleaner.Clean(ctx, t.Target.TempDirs())
	if err != nil {
		return nil, err
	}
	logger.Infof("2. Clearing cache...")
	cache, err := cleaner.Clean(ctx, t.Target.CacheDirs())
	if err != nil {
		return nil, err
	}

	verb := "Removed"
	if dryRun {
		verb = "Would remove"
	}
	report.Summary(verb+" temp files", fmt.Sprintf("%d (%s)", temp.Files, engine.FormatSize(float64(temp.Bytes))))
	report.Summary(verb+" cache files", fmt.Sprintf("%d (%s)", cache.Files, engine.FormatSize(float64(cache.Bytes))))
	report.Summary("Total space freed", engine.FormatSize(float64(temp.Bytes+cache.Bytes)))

	if err := t.addDiskSection(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// DiskReport shows disk usage and the largest files without deleting anything.
func (t *Toolkit) DiskReport(ctx context.Context) (*engine.Report, error) {
	report := engine.NewReport("DISK MANAGEMENT REPORT")
	if err := t.addDiskSection(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

func (t *Toolkit) addDiskSection(ctx context.Context, report *engine.Report) error {
	logger.Infof("Checking disk usage...")
	if usage, err := platform.GetDiskUsage(t.Target.DiskRoot()); err != nil {
		logger.Warnf("Could not read disk usage for %s: %v", t.Target.DiskRoot(), err)
	} else {
		report.Summary("Disk total", engine.FormatSize(float64(usage.Total)))
		report.Summary("Disk used", fmt.Sprintf("%s (%.1f%%)", engine.FormatSize(float64(usage.Used)), usage.PercentUsed))
		report.Summary("Disk free", engine.FormatSize(float64(usage.Free)))
	}

	logger.Infof("Finding large files (optional cleanup)...")
	report.Define(CategoryLargeFiles, engine.LargestFilesLimit)
	files, err := cleanup.FindLargeFiles(ctx, t.Config.ScanDir, t.Config.LargeFileThresholdMB)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		logger.Warnf("Could not scan %s for large files: %v", t.Config.ScanDir, err)
	}
	for _, f := range files {
		report.Add(engine.Finding{
			Record:   engine.NewRecord("large-files", "path", f.Path, "size", fmt.Sprint(f.Size)),
			Subject:  f.Path,
			Category: CategoryLargeFiles,
			Reason:   fmt.Sprintf("%.2f MB", f.MB()),
			Severity: engine.SeverityInfo,
		})
	}
	return nil
}
