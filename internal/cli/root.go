package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/snackdriven/tender-circuit/internal/format"
	"github.com/snackdriven/tender-circuit/internal/session"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	PrettyJSON bool

	// NowOverride pins the clock, for scripts and fixtures. Accepts
	// YYYY-MM-DD or RFC 3339.
	NowOverride string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "planner",
		Short:        "Local-first task and event planner",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Initialize storage
  planner init

  # Create a task due Friday
  planner items create-task --title "File taxes" --time-state due-by --due 2026-09-04

  # Today's agenda
  planner views active

  # Roll back the last change
  planner undo
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("PLANNER_DIR", ""), "Path to store dir (default: ~/.planner)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.NowOverride, "now", envOr("PLANNER_NOW", ""), "Pin the clock (YYYY-MM-DD or RFC 3339; for scripts/fixtures)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newViewsCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newSyncCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newMigrateCmd(app))
	cmd.AddCommand(newStatusCmd(app))

	return cmd
}

func openSession(cmd *cobra.Command, app *App) (*session.Session, error) {
	dir := app.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".planner")
	}
	app.Dir = dir

	nowFn, err := clock(app.NowOverride)
	if err != nil {
		return nil, err
	}

	s, err := session.Open(dir, nowFn)
	if err != nil {
		return nil, err
	}
	for _, n := range s.Notices() {
		fmt.Fprintln(cmd.ErrOrStderr(), n)
	}
	return s, nil
}

// clock maps the --now override to a fixed clock; empty means wall time.
func clock(override string) (func() time.Time, error) {
	if override == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, override, time.Local); err == nil {
			return func() time.Time { return t }, nil
		}
	}
	return nil, fmt.Errorf("invalid --now value: %s", override)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
