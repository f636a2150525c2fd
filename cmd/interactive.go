package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/user/cyberusb/pkg/menu"
)

var interactiveCmd = &cobra.Command{
	Use:     "menu",
	Aliases: []string{"interactive"},
	Short:   "Start the interactive menu",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context())
	},
}

// runMenu reads choices from stdin until the user exits, stdin closes or
// the process is interrupted.
func runMenu(ctx context.Context) error {
	err := menu.Loop(ctx, prompter, prompter.Out(), tk, tk.Target.Distro())
	if ctx.Err() != nil {
		// Ctrl+C is a normal way to leave the menu.
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}
