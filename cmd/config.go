package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cyberusb/pkg/config"
	"github.com/user/cyberusb/pkg/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
}

var showConfigCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Settings file: %s\n", tk.ConfigPath)
		return tk.ShowSettings()
	},
}

var setConfigCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save it",
	Long: `Change one setting and save it. Keys: auto_update, log_level, log_dir,
scripts_root, signature_dir, scan_dir, large_file_threshold_mb,
outdated_display_cap, command_timeout.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Reload so environment overrides and resolved defaults are not saved.
		cfg, err := config.ReadConfig(tk.ConfigPath)
		if err != nil {
			return err
		}
		if err := setKey(cfg, strings.ToLower(args[0]), args[1]); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.SaveConfig(tk.ConfigPath, cfg); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}
		logger.Infof("Saved %s = %s", args[0], args[1])
		return nil
	},
}

func setKey(cfg *config.Config, key, value string) error {
	var err error
	switch key {
	case "auto_update":
		cfg.AutoUpdate, err = strconv.ParseBool(value)
	case "log_level":
		cfg.LogLevel = strings.ToLower(value)
	case "log_dir":
		cfg.LogDir = value
	case "scripts_root":
		cfg.ScriptsRoot = value
	case "signature_dir":
		cfg.SignatureDir = value
	case "scan_dir":
		cfg.ScanDir = value
	case "large_file_threshold_mb":
		cfg.LargeFileThresholdMB, err = strconv.Atoi(value)
	case "outdated_display_cap":
		cfg.OutdatedDisplayCap, err = strconv.Atoi(value)
	case "command_timeout":
		cfg.CommandTimeout, err = time.ParseDuration(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

func init() {
	configCmd.AddCommand(showConfigCmd)
	configCmd.AddCommand(setConfigCmd)
	rootCmd.AddCommand(configCmd)
}
