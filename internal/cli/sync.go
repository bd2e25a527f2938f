package cli

import (
	"github.com/snackdriven/tender-circuit/internal/session"

	"github.com/spf13/cobra"
)

func newSyncCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Remote sync commands",
	}
	cmd.AddCommand(newSyncStatusCmd(app))
	cmd.AddCommand(newSyncPushCmd(app))
	cmd.AddCommand(newSyncPullCmd(app))
	return cmd
}

func syncStatusData(s *session.Session) map[string]any {
	state, lastErr := s.Sync().Status()
	data := map[string]any{
		"enabled":      s.Sync().Enabled(),
		"state":        state,
		"lastSyncedAt": s.Sync().LastSyncedAt(),
	}
	if lastErr != "" {
		data["error"] = lastErr
	}
	return data
}

func newSyncStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync state",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())
			return writeOut(cmd, app, map[string]any{"data": syncStatusData(s)})
		},
	}
	return cmd
}

func newSyncPushCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push the collection to the remote store now",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			if !s.Sync().Enabled() {
				return writeOut(cmd, app, map[string]any{"data": syncStatusData(s)})
			}
			if err := s.Sync().PushNow(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": syncStatusData(s)})
		},
	}
	return cmd
}

func newSyncPullCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Pull the remote document if it is newer than the last sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			if !s.Sync().Enabled() {
				return writeOut(cmd, app, map[string]any{"data": syncStatusData(s)})
			}
			applied, err := s.Sync().Pull(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			data := syncStatusData(s)
			data["applied"] = applied
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	return cmd
}
