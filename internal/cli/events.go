package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List audit log events (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			evs, err := s.Store().ReadEvents(cmd.Context(), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"events": evs, "count": len(evs)},
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Max events to return (0 for all)")
	return cmd
}
