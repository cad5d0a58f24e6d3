package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lindoshq/lindos-go/interfaces/boundary"
)

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [message]",
		Short: "Check a message without processing it",
		Long: `Check whether a message would be accepted, without invoking the
responder. Prints "ok" for an acceptable message; otherwise prints the
error code and its explanation and exits non-zero.

Examples:
  lindos validate "Hello"
  cat message.txt | lindos validate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			b := boundary.New(a.setup(cfg))

			var raw []byte
			if len(args) > 0 {
				raw = []byte(args[0])
			} else {
				raw, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
			}

			code := b.ValidateMessage(raw)
			if code == 0 {
				fmt.Fprintln(a.stdout, "ok")
				return nil
			}

			msg := b.ErrorMessageForCode(code)
			defer b.ReleaseString(msg)
			return fmt.Errorf("invalid message (code %d): %s", code, msg.String())
		},
	}
}
