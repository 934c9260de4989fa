package main

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/errors"
	"github.com/KirkDiggler/initiative-tracker/internal/tracker"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run an interactive tracker for the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app, _ []string) error {
			return a.play(ctx, cmd.InOrStdin())
		})(cmd, args)
	},
}

// play reads commands line by line until quit or end of input. Rejected
// commands are reported and the loop carries on; a corrupted state ends it.
func (a *app) play(ctx context.Context, in io.Reader) error {
	state, err := a.state(ctx)
	if err != nil {
		return err
	}
	if err := a.render(state); err != nil {
		return err
	}
	a.printf("Type help for commands.\n")

	scanner := bufio.NewScanner(in)
	for {
		a.printf("> ")
		if !scanner.Scan() {
			a.printf("\n")
			if err := scanner.Err(); err != nil {
				return errors.Wrap(err, "failed to read input")
			}
			return nil
		}

		quit, err := a.execute(ctx, strings.Fields(scanner.Text()))
		switch {
		case tracker.IsCorrupted(err):
			return err
		case rejected(err):
			a.printf("%s\n", errors.GetMessage(err))
		case err != nil:
			slog.Error("Command failed", "session_id", a.cfg.Session, "error", err)
			a.printf("Command failed: %v\n", err)
		case quit:
			return nil
		}
	}
}

// rejected reports errors caused by the command itself, as opposed to the
// store or the tracker state
func rejected(err error) bool {
	return errors.IsInvalidArgument(err) ||
		errors.IsNotFound(err) ||
		errors.IsAlreadyExists(err) ||
		errors.IsOutOfRange(err)
}
