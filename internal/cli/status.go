package cli

import (
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/views"

	"github.com/spf13/cobra"
)

func newStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show local store status",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			items := s.Items()
			var tasks, events, done int
			for _, it := range items {
				switch {
				case it.IsEvent():
					events++
				case it.Status == model.StatusDone:
					tasks++
					done++
				default:
					tasks++
				}
			}

			active := len(s.View("active", views.Params{})) + len(s.View("overdue", views.Params{}))

			state, _ := s.Sync().Status()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":       app.Dir,
					"items":     len(items),
					"tasks":     tasks,
					"events":    events,
					"active":    active,
					"done":      done,
					"undoDepth": s.UndoDepth(),
					"sync": map[string]any{
						"enabled": s.Sync().Enabled(),
						"state":   state,
					},
					"horizonDays": s.Config().HorizonDays,
				},
			})
		},
	}
	return cmd
}
