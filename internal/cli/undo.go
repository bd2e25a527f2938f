package cli

import (
	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Restore the collection to before the last change",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			restored, err := s.Undo(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"restored":  restored,
					"remaining": s.UndoDepth(),
				},
			})
		},
	}
	return cmd
}
