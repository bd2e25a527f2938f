package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			// Opening the session creates the dir, writes the default config
			// on first use and runs any pending legacy migration.
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        app.Dir,
					"configPath": filepath.Join(app.Dir, "config.toml"),
					"items":      len(s.Items()),
				},
			})
		},
	}
	return cmd
}
