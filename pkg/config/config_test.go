package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.AutoUpdate || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.LargeFileThresholdMB != 100 || cfg.OutdatedDisplayCap != 5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "auto_update: true\nlog_level: debug\ncommand_timeout: 45s\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.AutoUpdate || cfg.LogLevel != "debug" || cfg.CommandTimeout != 45*time.Second {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LargeFileThresholdMB != 100 {
		t.Errorf("absent key lost its default: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":  "log_level: [",
		"level":     "log_level: loud\n",
		"threshold": "large_file_threshold_mb: -1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReadConfigSkipsValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: loud\nauto_update: true\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := ReadConfig(path)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.LogLevel != "loud" || !cfg.AutoUpdate || cfg.LargeFileThresholdMB != 100 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("log_level: ["), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConfig(path); err == nil {
		t.Error("broken YAML must still fail")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.AutoUpdate = true
	cfg.ScriptsRoot = "/media/usb"
	cfg.CommandTimeout = 2 * time.Minute

	if err := SaveConfig(path, &cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if *loaded != cfg {
		t.Errorf("loaded %+v, saved %+v", *loaded, cfg)
	}
}

func TestNextLogLevelCycles(t *testing.T) {
	cfg := Defaults()
	got := []string{cfg.NextLogLevel(), cfg.NextLogLevel(), cfg.NextLogLevel(), cfg.NextLogLevel()}
	want := []string{"warning", "error", "debug", "info"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("step %d: got %s, want %s", i, got[i], want[i])
		}
	}
	cfg.LogLevel = "odd"
	if cfg.NextLogLevel() != "debug" {
		t.Error("unknown level should reset to the first entry")
	}
}
