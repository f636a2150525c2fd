package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/cyberusb/pkg/config"
	"github.com/user/cyberusb/pkg/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive settings wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadConfig(tk.ConfigPath)
		if err != nil {
			return err
		}

		fmt.Println(ui.Banner("Cyber USB Toolkit Setup Wizard", 45))
		fmt.Println("Press Enter to keep the value in brackets.")

		// 1. Paths
		if cfg.ScriptsRoot, err = ask("Step 1: Scripts directory", cfg.ScriptsRoot); err != nil {
			return err
		}
		if cfg.ScanDir, err = ask("Step 2: Directory to scan for threats and large files", cfg.ScanDir); err != nil {
			return err
		}

		// 2. Log level
		fmt.Printf("\nStep 3: Log level (%s)\n", strings.Join(config.LogLevels, ", "))
		level, err := ask("Log level", cfg.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = strings.ToLower(level)

		// 3. Large file threshold
		threshold, err := ask("Step 4: Large file threshold in MB", strconv.Itoa(cfg.LargeFileThresholdMB))
		if err != nil {
			return err
		}
		if cfg.LargeFileThresholdMB, err = strconv.Atoi(threshold); err != nil {
			return fmt.Errorf("invalid threshold %q", threshold)
		}

		ok, err := prompter.Confirm("Step 5: Enable auto-update?")
		if err != nil {
			return err
		}
		cfg.AutoUpdate = ok

		if err := cfg.Validate(); err != nil {
			return err
		}
		fmt.Println("\nSaving configuration...")
		if err := config.SaveConfig(tk.ConfigPath, cfg); err != nil {
			return fmt.Errorf("error saving config: %w", err)
		}

		ui.SuccessColor.Println("Setup Complete!")
		fmt.Printf("Settings file: %s\n", tk.ConfigPath)
		fmt.Println("You can now run 'cyberusb' for the menu")
		return nil
	},
}

// ask prints a question with its current value and returns the answer, or
// the current value when the answer is empty.
func ask(question, current string) (string, error) {
	answer, err := prompter.ReadLine(fmt.Sprintf("%s [%s] > ", question, current))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func init() {
	configCmd.AddCommand(setupCmd)
}
