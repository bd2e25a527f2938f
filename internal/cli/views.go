package cli

import (
	"fmt"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/statusutil"
	"github.com/snackdriven/tender-circuit/internal/views"

	"github.com/spf13/cobra"
)

// itemView decorates an item with its derived badges: blocked, stale, and the
// due-date countdown.
type itemView struct {
	model.Item
	Blocked   bool                `json:"blocked,omitempty"`
	Stale     bool                `json:"stale,omitempty"`
	Countdown *dateutil.Countdown `json:"countdown,omitempty"`
}

// decorate needs the whole collection, not just the view slice, because
// blocked resolves dependencies that may live outside the view.
func decorate(items, all []model.Item, today string, now int64) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		v := itemView{Item: it}
		if it.IsTask() && it.Status != model.StatusDone {
			v.Blocked = statusutil.IsBlocked(all, it)
			v.Stale = statusutil.IsStale(it, now)
			if it.DueDate != "" {
				v.Countdown = dateutil.CountdownFor(it.DueDate, today)
			}
		}
		out = append(out, v)
	}
	return out
}

func newViewsCmd(app *App) *cobra.Command {
	var p views.Params
	var week bool

	cmd := &cobra.Command{
		Use:   "views <name>",
		Short: fmt.Sprintf("Run a view query (%v)", views.Names),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if !views.Known(name) {
				return writeErr(cmd, fmt.Errorf("unknown view: %s", name))
			}

			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			today := s.Today()
			now := s.Now()
			all := s.Items()
			data := map[string]any{
				"view":  name,
				"today": today,
			}

			items := s.View(name, p)
			data["items"] = decorate(items, all, today, now)

			// The agenda shows overdue work above the active window, with a
			// count of what's in flight.
			if name == "active" {
				overdue := s.View("overdue", p)
				data["overdue"] = decorate(overdue, all, today, now)
				data["activeCount"] = len(items) + len(overdue)
			}
			if week || name == "calendar" {
				data["week"] = s.Week(p.SelectedDate)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}

	cmd.Flags().StringVar(&p.SelectedDate, "date", "", "Selected date for the calendar view (YYYY-MM-DD; default today)")
	cmd.Flags().StringVar(&p.Search, "search", "", "Title search (all view; case-insensitive substring)")
	cmd.Flags().StringVar(&p.Sort, "sort", "", "Sort order (browse: label-priority|alpha|newest; all: newest|alpha|due)")
	cmd.Flags().IntVar(&p.HorizonDays, "horizon", 0, "Active window horizon in days (0 uses the configured value, negative disables the bound)")
	cmd.Flags().StringVar(&p.Type, "type", "", "Restrict the all view to task or event")
	cmd.Flags().BoolVar(&week, "week", false, "Include the seven-day strip")
	return cmd
}
