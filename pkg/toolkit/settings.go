package toolkit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/user/cyberusb/pkg/config"
	"github.com/user/cyberusb/pkg/logger"
)

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

// ToggleAutoUpdate flips auto_update and saves the settings file. The
// running settings change only once the file is written.
func (t *Toolkit) ToggleAutoUpdate() error {
	on := !t.Config.AutoUpdate
	if err := t.persist(func(c *config.Config) { c.AutoUpdate = on }); err != nil {
		return err
	}
	t.Config.AutoUpdate = on
	t.printf("Auto-update %s\n", enabled(on))
	return nil
}

// CycleLogLevel moves to the next log level, saves it and then applies it.
func (t *Toolkit) CycleLogLevel() error {
	next := *t.Config
	level := next.NextLogLevel()
	if err := t.persist(func(c *config.Config) { c.LogLevel = level }); err != nil {
		return err
	}
	t.Config.LogLevel = level
	logger.SetLevel(logger.ParseLevel(level))
	t.printf("Log level set to %s\n", level)
	return nil
}

// ShowSettings prints the effective settings as YAML.
func (t *Toolkit) ShowSettings() error {
	data, err := yaml.Marshal(t.Config)
	if err != nil {
		return err
	}
	t.printf("\nCurrent Settings:\n%s", data)
	return nil
}

// persist applies one change to the settings file as stored on disk, so
// environment overrides and resolved default paths are never written back.
func (t *Toolkit) persist(apply func(*config.Config)) error {
	cfg, err := config.LoadConfig(t.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	apply(cfg)
	if err := config.SaveConfig(t.ConfigPath, cfg); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	logger.Debugf("Settings saved")
	return nil
}
