package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/user/cyberusb/pkg/config"
	"github.com/user/cyberusb/pkg/dispatch"
	"github.com/user/cyberusb/pkg/engine"
	"github.com/user/cyberusb/pkg/logger"
	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/sysexec"
	"github.com/user/cyberusb/pkg/toolkit"
	"github.com/user/cyberusb/pkg/ui"
)

var rootCmd = &cobra.Command{
	Use:   "cyberusb",
	Short: "Portable performance and security toolkit",
	Long: `Cyber USB Toolkit checks drivers, cleans temporary files and looks for
threat signatures on Windows and Linux. Run it without a command for the
interactive menu.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context())
	},
}

var (
	// tk is built once per invocation by setup.
	tk       *toolkit.Toolkit
	prompter *ui.Prompter
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Settings file (default ~/.cyberusb/config.yaml)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.String("format", toolkit.FormatText, "Report format: text or json")
	flags.Bool("no-color", false, "Disable colored output")
	for _, name := range []string{"config", "debug", "format", "no-color"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}

	// CYBERUSB_LOG_LEVEL, CYBERUSB_SCRIPTS_ROOT, CYBERUSB_FORMAT, ...
	viper.SetEnvPrefix("CYBERUSB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// setup loads settings, applies flag and environment overrides and builds
// the toolkit every command works with.
func setup(cmd *cobra.Command, args []string) error {
	if viper.GetBool("no-color") {
		ui.DisableColor()
	}

	format := viper.GetString("format")
	if format != toolkit.FormatText && format != toolkit.FormatJSON {
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	cfgPath := viper.GetString("config")
	if cfgPath == "" {
		p, err := config.GetConfigPath()
		if err != nil {
			return err
		}
		cfgPath = p
	}
	cfg, err := loadConfig(cmd, cfgPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	applyOverrides(cfg)

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if viper.GetBool("debug") {
		logger.SetLevel(logger.LevelDebug)
	}
	if logPath, err := logger.Setup(cfg.LogDir); err != nil {
		logger.Warnf("File logging disabled: %v", err)
	} else {
		logger.Debugf("Logging to %s", logPath)
	}

	target := platform.Detect()
	runner := sysexec.NewExecRunner(cfg.CommandTimeout)

	sigs := engine.DefaultSignatureSet()
	if cfg.SignatureDir != "" {
		if sigs, err = engine.LoadSignaturePacks(sigs, cfg.SignatureDir); err != nil {
			logger.Warnf("Failed to load signature packs: %v", err)
		}
	}

	prompter = ui.NewPrompter(os.Stdin, os.Stdout)
	tk = &toolkit.Toolkit{
		Config:     cfg,
		ConfigPath: cfgPath,
		Target:     target,
		Runner:     runner,
		Signatures: sigs,
		Dispatcher: &dispatch.Dispatcher{
			Root:   cfg.ScriptsRoot,
			Target: target,
			Runner: runner,
			Stdout: os.Stdout,
			Stderr: os.Stderr,
		},
		Confirmer: prompter,
		Out:       os.Stdout,
		Format:    format,
	}
	logger.Debugf("Detected %s, scripts in %s", target.Distro(), cfg.ScriptsRoot)
	return nil
}

// loadConfig validates the settings file, except under `config`, whose
// commands must still run to repair an invalid file.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	for c := cmd; c != nil; c = c.Parent() {
		if c != configCmd {
			continue
		}
		cfg, err := config.ReadConfig(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			logger.Warnf("%s: %v", path, err)
		}
		return cfg, nil
	}
	return config.LoadConfig(path)
}

// applyOverrides layers CYBERUSB_* variables over the file and fills in the
// paths that default to the runtime environment.
func applyOverrides(cfg *config.Config) {
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if v := viper.GetString("scripts_root"); v != "" {
		cfg.ScriptsRoot = v
	}
	if v := viper.GetString("scan_dir"); v != "" {
		cfg.ScanDir = v
	}

	if cfg.ScriptsRoot == "" {
		if exe, err := os.Executable(); err == nil {
			cfg.ScriptsRoot = filepath.Dir(exe)
		} else {
			cfg.ScriptsRoot = "."
		}
	}
	if cfg.ScanDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.ScanDir = home
		} else {
			cfg.ScanDir = "."
		}
	}
	if cfg.LogDir == "" {
		if dir, err := config.Dir(); err == nil {
			cfg.LogDir = filepath.Join(dir, "logs")
		}
	}
}
