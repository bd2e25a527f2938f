package cli

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run any pending legacy-format migration and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Migration happens on load; opening the session is the work.
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":   app.Dir,
					"items": len(s.Items()),
				},
			})
		},
	}
	return cmd
}
