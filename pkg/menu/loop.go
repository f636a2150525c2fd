package menu

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Executor carries out the actions the menu selects.
type Executor interface {
	Execute(ctx context.Context, action Action) error
}

// LineReader is the input side of the loop; ui.Prompter satisfies it.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Loop shows the menu, reads one choice at a time and executes the selected
// action until the user exits. Action errors are printed and the loop goes
// on. EOF on the input ends the loop cleanly; any other read error, or a
// cancelled context, is returned.
func Loop(ctx context.Context, in LineReader, out io.Writer, exec Executor, distro string) error {
	state := MainMenu
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, Render(state, distro))
		line, err := in.ReadLine(fmt.Sprintf("Select option (1-%d): ", Options(state)))
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}

		next, action := Transition(state, line)
		switch action {
		case None:
		case Invalid:
			fmt.Fprintf(out, "Invalid option: %q\n", line)
		default:
			if err := exec.Execute(ctx, action); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				fmt.Fprintf(out, "%v\n", err)
			}
		}

		if next == Exit {
			fmt.Fprintln(out, "Thank you for using Cyber USB Toolkit!")
			return nil
		}
		state = next
	}
}
