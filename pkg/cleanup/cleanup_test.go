package cleanup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func mkfile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCleanRemovesFilesKeepsDirs(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.tmp"), 100)
	mkfile(t, filepath.Join(dir, "sub", "b.tmp"), 50)

	res, err := (&Cleaner{}).Clean(context.Background(), []string{dir, filepath.Join(dir, "does-not-exist")})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Files != 2 || res.Bytes != 150 {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.tmp")); !os.IsNotExist(err) {
		t.Error("a.tmp should be gone")
	}
	if _, err := os.Stat(filepath.Join(dir, "sub")); err != nil {
		t.Error("directories must be kept")
	}
}

func TestCleanDryRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.tmp"), 10)

	res, err := (&Cleaner{DryRun: true}).Clean(context.Background(), []string{dir})
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	if res.Files != 1 || res.Bytes != 10 {
		t.Errorf("unexpected result: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.tmp")); err != nil {
		t.Error("dry run must not delete")
	}
}

func TestCleanCancelled(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, filepath.Join(dir, "a.tmp"), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Cleaner{}).Clean(ctx, []string{dir}); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "a.tmp")); err != nil {
		t.Error("nothing should be removed after cancellation")
	}
}

func TestFindLargeFilesThresholdAndLimit(t *testing.T) {
	dir := t.TempDir()
	const mb = 1024 * 1024
	mkfile(t, filepath.Join(dir, "exactly-1mb"), mb)
	for i := 0; i < 12; i++ {
		mkfile(t, filepath.Join(dir, fmt.Sprintf("f%02d", i)), mb+i*1024)
	}

	files, err := FindLargeFiles(context.Background(), dir, 1)
	if err != nil {
		t.Fatalf("FindLargeFiles: %v", err)
	}
	if len(files) != 10 {
		t.Fatalf("expected 10 files, got %d", len(files))
	}
	if filepath.Base(files[0].Path) != "f11" || filepath.Base(files[9].Path) != "f02" {
		t.Errorf("unexpected order: first %s last %s", files[0].Path, files[9].Path)
	}
	for _, f := range files {
		if filepath.Base(f.Path) == "exactly-1mb" {
			t.Error("files equal to the threshold are not large")
		}
	}
}
