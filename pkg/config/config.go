package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the toolkit's settings file.
type Config struct {
	AutoUpdate           bool          `yaml:"auto_update"`
	LogLevel             string        `yaml:"log_level"`
	LogDir               string        `yaml:"log_dir"`
	ScriptsRoot          string        `yaml:"scripts_root"`
	SignatureDir         string        `yaml:"signature_dir"`
	ScanDir              string        `yaml:"scan_dir"`
	LargeFileThresholdMB int           `yaml:"large_file_threshold_mb"`
	OutdatedDisplayCap   int           `yaml:"outdated_display_cap"`
	CommandTimeout       time.Duration `yaml:"command_timeout"`
}

// LogLevels is the cycle order used by the settings menu.
var LogLevels = []string{"debug", "info", "warning", "error"}

// Defaults returns the settings used when no file exists. Empty paths are
// resolved at startup (scripts next to the executable, scans in $HOME).
func Defaults() Config {
	return Config{
		AutoUpdate:           false,
		LogLevel:             "info",
		LargeFileThresholdMB: 100,
		OutdatedDisplayCap:   5,
	}
}

// Dir returns ~/.cyberusb, creating it if needed.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".cyberusb")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return dir, nil
}

// GetConfigPath returns the default settings file location.
func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig reads the settings file at path, or the default location when
// path is empty. A missing file yields Defaults(); keys absent from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig is LoadConfig without validation, for the commands that repair
// a settings file. Unparseable YAML is still an error.
func ReadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Defaults()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}

// SaveConfig writes cfg to path, or the default location when path is empty.
func SaveConfig(path string, cfg *Config) error {
	if path == "" {
		p, err := GetConfigPath()
		if err != nil {
			return err
		}
		path = p
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Validate rejects values the toolkit cannot use.
func (c *Config) Validate() error {
	if c.LargeFileThresholdMB < 0 {
		return fmt.Errorf("large_file_threshold_mb must not be negative")
	}
	if c.OutdatedDisplayCap < 0 {
		return fmt.Errorf("outdated_display_cap must not be negative")
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative")
	}
	for _, l := range LogLevels {
		if c.LogLevel == l {
			return nil
		}
	}
	return fmt.Errorf("unknown log_level %q", c.LogLevel)
}

// NextLogLevel advances LogLevel through LogLevels and returns the new value.
func (c *Config) NextLogLevel() string {
	for i, l := range LogLevels {
		if l == c.LogLevel {
			c.LogLevel = LogLevels[(i+1)%len(LogLevels)]
			return c.LogLevel
		}
	}
	c.LogLevel = LogLevels[0]
	return c.LogLevel
}
