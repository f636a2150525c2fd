package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/cyberusb/pkg/menu"
	"github.com/user/cyberusb/pkg/platform"
	"github.com/user/cyberusb/pkg/toolkit"
	"github.com/user/cyberusb/pkg/ui"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "Check driver status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tk.Drivers(cmd.Context())
	},
}

var threatsCmd = &cobra.Command{
	Use:   "threats [dir]",
	Short: "Scan a directory and running processes for threat signatures",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := toolkit.ThreatOptions{Dir: tk.Config.ScanDir}
		if len(args) == 1 {
			opts.Dir = args[0]
		}
		opts.ClamAV, _ = cmd.Flags().GetBool("clamav")
		opts.Hash, _ = cmd.Flags().GetBool("hash")

		report, err := tk.ThreatReport(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return tk.Print(report)
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove temporary and cache files",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		tk.AssumeYes, _ = cmd.Flags().GetBool("yes")
		if dryRun {
			report, err := tk.CleanupReport(cmd.Context(), true)
			if err != nil {
				return err
			}
			return tk.Print(report)
		}
		return tk.Cleanup(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run <action>",
	Short: "Run one menu action by name",
	Long: `Run one menu action by name: cleanup, drivers, updates, performance,
disk, power, threats, security, credentials, network, phishing, ethical,
run-all.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tk.AssumeYes, _ = cmd.Flags().GetBool("yes")
		return tk.Execute(cmd.Context(), menu.Action(strings.ToLower(args[0])))
	},
}

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Show system information and check dependencies",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := platform.CollectSystemInfo(tk.Target)
		missing := platform.MissingDependencies(tk.Target, tk.Runner)

		if tk.Format == toolkit.FormatJSON {
			data, err := json.MarshalIndent(struct {
				platform.SystemInfo
				Missing []string `json:"missing_dependencies"`
			}{info, missing}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Print(info.String())
		if len(missing) > 0 {
			ui.WarningColor.Printf("Missing dependencies: %s\n", strings.Join(missing, ", "))
		} else {
			ui.SuccessColor.Println("All dependencies satisfied")
		}
		return nil
	},
}

func init() {
	threatsCmd.Flags().Bool("clamav", false, "Also run a ClamAV scan")
	threatsCmd.Flags().Bool("hash", false, "Add the MD5 of flagged files")

	cleanupCmd.Flags().Bool("dry-run", false, "Count files without deleting them")
	cleanupCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	runCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	rootCmd.AddCommand(driversCmd, threatsCmd, cleanupCmd, runCmd, sysinfoCmd)
}
