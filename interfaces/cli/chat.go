package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lindoshq/lindos-go/application"
	"github.com/lindoshq/lindos-go/domain/session"
)

// chatOptions holds options for the chat command.
type chatOptions struct {
	timeout time.Duration
}

// newChatCmd creates the chat command.
func (a *App) newChatCmd() *cobra.Command {
	opts := &chatOptions{}

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send a message, or start an interactive session",
		Long: `Send one message and print the response, or start an interactive
session when no message is given.

Examples:
  # One-shot
  lindos chat "Hello there"

  # Interactive session (exit with /quit or Ctrl-D)
  lindos chat

  # With a configuration file
  lindos chat -c lindos.yaml "Hello"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			engine := a.setup(cfg)

			stopWatch := a.watchConfig()
			defer stopWatch()

			d, err := application.NewDispatcher(engine,
				application.WithDebounce(cfg.Dispatcher.Debounce()),
				application.WithErrorTimeout(cfg.Dispatcher.ErrorTimeout()),
			)
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}
			defer d.Close()
			d.Start(cmd.Context())

			if len(args) > 0 {
				return a.chatOnce(cmd.Context(), d, args[0], opts.timeout)
			}
			return a.chatInteractive(cmd.Context(), d, opts.timeout)
		},
	}

	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Per-message timeout")

	return cmd
}

// chatOnce submits one message and prints the response.
func (a *App) chatOnce(ctx context.Context, d *application.Dispatcher, text string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := d.SubmitWait(ctx, text)
	if err != nil {
		if rej, ok := application.AsRejection(err); ok {
			return fmt.Errorf("message rejected (code %d): %s", rej.Code(), rej.Error())
		}
		return err
	}

	fmt.Fprintln(a.stdout, reply)
	return nil
}

// chatInteractive reads lines from stdin until EOF or /quit.
func (a *App) chatInteractive(ctx context.Context, d *application.Dispatcher, timeout time.Duration) error {
	fmt.Fprintf(a.stdout, "%s\n", d.Snapshot().Display)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(a.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "/quit", "/exit":
			return scanner.Err()
		case "/reset":
			d.Reset()
			fmt.Fprintf(a.stdout, "%s\n", session.DefaultPrompt)
			continue
		}

		msgCtx, cancel := context.WithTimeout(ctx, timeout)
		reply, err := d.SubmitWait(msgCtx, line)
		cancel()

		switch {
		case err == nil:
			fmt.Fprintln(a.stdout, reply)
		case errors.Is(err, context.Canceled):
			return nil
		default:
			if rej, ok := application.AsRejection(err); ok {
				fmt.Fprintf(a.stderr, "Error: %s\n", rej.Error())
			} else {
				fmt.Fprintf(a.stderr, "Error: %v\n", err)
			}
		}
	}
	return scanner.Err()
}
