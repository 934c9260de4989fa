package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/initiative-tracker/internal/orchestrators/session"
	"github.com/KirkDiggler/initiative-tracker/internal/pkg/idgen"
)

var classesCmd = &cobra.Command{
	Use:       "classes [characters|monsters|summons]",
	Short:     "List the character, monster and summon classes",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"characters", "monsters", "summons"},
	RunE: withApp(func(_ context.Context, a *app, args []string) error {
		kind := ""
		if len(args) == 1 {
			kind = strings.ToLower(args[0])
		}
		return a.renderClasses(kind)
	}),
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored roster",
	Args:  cobra.NoArgs,
	RunE:  runVerb("show"),
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a participant to the roster",
}

var addCharacterCmd = &cobra.Command{
	Use:   "character <class> <name...>",
	Short: "Track a character; auto-summons come with it",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runVerb("add", "character"),
}

var addMonsterCmd = &cobra.Command{
	Use:   "monster <class>",
	Short: "Track a monster type",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerb("add", "monster"),
}

var addSummonCmd = &cobra.Command{
	Use:   "summon <character-class> <summon-class>",
	Short: "Give a tracked character a summon",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerb("add", "summon"),
}

var addAllyCmd = &cobra.Command{
	Use:   "ally <name...>",
	Short: "Track a named ally",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runVerb("add", "ally"),
}

var removeCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Stop tracking a participant and its summons",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerb("remove"),
}

var removeSummonCmd = &cobra.Command{
	Use:   "remove-summon <character-id> <summon-id>",
	Short: "Dismiss one of a character's summons",
	Args:  cobra.ExactArgs(2),
	RunE:  runVerb("remove-summon"),
}

var cookieCmd = &cobra.Command{
	Use:   "cookie",
	Short: "Read or replace the stored roster cookie",
}

var cookieExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the cookie value for the current roster",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		out, err := a.sessions.ExportCookie(ctx, &session.ExportCookieInput{SessionID: a.cfg.Session})
		if err != nil {
			return err
		}
		a.printf("%s\n", out.Value)
		return nil
	}),
}

var cookieImportCmd = &cobra.Command{
	Use:   "import <value>",
	Short: "Replace the roster with the one in a cookie value",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		out, err := a.sessions.ImportCookie(ctx, &session.ImportCookieInput{
			SessionID: a.cfg.Session,
			Value:     args[0],
		})
		if err != nil {
			return err
		}
		return a.render(out.State)
	}),
}

var cookieClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored roster",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, _ []string) error {
		if _, err := a.sessions.Clear(ctx, &session.ClearInput{SessionID: a.cfg.Session}); err != nil {
			return err
		}
		a.printf("Roster for session %s cleared.\n", a.cfg.Session)
		return nil
	}),
}

// sessionIDs mints the ids printed by session new
var sessionIDs idgen.Generator = idgen.NewUUID("session")

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage session ids",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Print a fresh session id to pass with --session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), sessionIDs.Generate())
		return nil
	},
}

func init() {
	addCmd.AddCommand(addCharacterCmd)
	addCmd.AddCommand(addMonsterCmd)
	addCmd.AddCommand(addSummonCmd)
	addCmd.AddCommand(addAllyCmd)

	cookieCmd.AddCommand(cookieExportCmd)
	cookieCmd.AddCommand(cookieImportCmd)
	cookieCmd.AddCommand(cookieClearCmd)

	sessionCmd.AddCommand(sessionNewCmd)
}

// runVerb runs a one-shot command through the same interpreter play uses
func runVerb(verb ...string) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, a *app, args []string) error {
		words := append(append([]string{}, verb...), args...)
		_, err := a.execute(ctx, words)
		return err
	})
}
