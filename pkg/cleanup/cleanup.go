// Package cleanup removes temporary and cache files and finds large files
// worth deleting by hand.
package cleanup

import (
	"context"
	"os"

	"github.com/karrick/godirwalk"

	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
)

// Result counts what a pass removed (or would remove, in a dry run).
type Result struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// Add merges o into r.
func (r *Result) Add(o Result) {
	r.Files += o.Files
	r.Bytes += o.Bytes
}

// Cleaner deletes regular files under a set of directories. Directories
// themselves are left in place.
type Cleaner struct {
	// DryRun counts files without removing them.
	DryRun bool
}

// Clean walks every existing directory in dirs. Files that cannot be
// inspected or removed are skipped silently; only a cancelled context stops
// the pass early.
func (c *Cleaner) Clean(ctx context.Context, dirs []string) (Result, error) {
	var total Result
	for _, dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		logger.Infof("Cleaning: %s", dir)
		res, err := c.cleanDir(ctx, dir)
		total.Add(res)
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		if err != nil {
			logger.Warnf("Could not clean: %s (%v)", dir, err)
		}
	}
	return total, nil
}

func (c *Cleaner) cleanDir(ctx context.Context, dir string) (Result, error) {
	var res Result
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !de.IsRegular() {
				return nil
			}
			info, err := os.Lstat(path)
			if err != nil {
				return nil
			}
			if !c.DryRun {
				if err := os.Remove(path); err != nil {
					logger.Debugf("Cannot remove %s: %v", path, err)
					return nil
				}
			}
			res.Files++
			res.Bytes += info.Size()
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			return godirwalk.SkipNode
		},
	})
	return res, err
}

// FindLargeFiles returns the LargestFilesLimit biggest files under dir that
// are strictly larger than thresholdMB mebibytes, largest first.
func FindLargeFiles(ctx context.Context, dir string, thresholdMB int) ([]engine.FileSize, error) {
	threshold := int64(thresholdMB) * 1024 * 1024
	var found []engine.FileSize
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !de.IsRegular() {
				return nil
			}
			info, err := os.Lstat(path)
			if err != nil {
				return nil
			}
			if info.Size() > threshold {
				found = append(found, engine.FileSize{Path: path, Size: info.Size()})
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if ctx.Err() != nil {
				return godirwalk.Halt
			}
			return godirwalk.SkipNode
		},
	})
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return engine.TopBySize(found, engine.LargestFilesLimit), err
}
