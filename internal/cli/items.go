package cli

import (
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/mutate"
	"github.com/snackdriven/tender-circuit/internal/session"

	"github.com/spf13/cobra"
)

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Item commands",
	}

	cmd.AddCommand(newItemsCreateTaskCmd(app))
	cmd.AddCommand(newItemsCreateEventCmd(app))
	cmd.AddCommand(newItemsEditTaskCmd(app))
	cmd.AddCommand(newItemsEditEventCmd(app))
	cmd.AddCommand(newItemsToggleCmd(app))
	cmd.AddCommand(newItemsToggleSubtaskCmd(app))
	cmd.AddCommand(newItemsReopenCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))

	return cmd
}

// runMutation opens the session, applies one operation and prints the result
// envelope. The deferred Close flushes any debounced push before exit.
func runMutation(cmd *cobra.Command, app *App, label string, op session.Op) error {
	s, err := openSession(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer s.Close(cmd.Context())

	res, err := s.Mutate(cmd.Context(), label, op)
	if err != nil {
		return writeErr(cmd, err)
	}

	data := map[string]any{
		"item":    res.Item,
		"changed": res.Changed,
	}
	if res.Note != "" {
		data["note"] = res.Note
	}
	if res.Spawned != nil {
		data["spawned"] = res.Spawned
	}
	return writeOut(cmd, app, map[string]any{"data": data})
}

func newItemsCreateTaskCmd(app *App) *cobra.Command {
	var in mutate.TaskInput

	cmd := &cobra.Command{
		Use:   "create-task",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "create task", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.CreateTask(items, in, now, today)
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&in.TimeState, "time-state", "open", "Time state (open|due-by|recurring)")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.ActivationDate, "activation", "", "Activation date (YYYY-MM-DD; derived from due date when omitted)")
	cmd.Flags().StringVar(&in.RecurrenceRule, "recurrence", "", "Recurrence rule (daily|weekly|monthly)")
	cmd.Flags().StringSliceVar(&in.Labels, "label", nil, "Labels (15min|browse; repeatable)")
	cmd.Flags().StringArrayVar(&in.Subtasks, "subtask", nil, "Subtask text (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newItemsCreateEventCmd(app *App) *cobra.Command {
	var in mutate.EventInput

	cmd := &cobra.Command{
		Use:   "create-event",
		Short: "Create an event",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "create event", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.CreateEvent(items, in, now)
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Event title (required)")
	cmd.Flags().StringVar(&in.DateTime, "at", "", "When (YYYY-MM-DDTHH:MM, or YYYY-MM-DD with --all-day)")
	cmd.Flags().BoolVar(&in.AllDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&in.Location, "location", "", "Location")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newItemsEditTaskCmd(app *App) *cobra.Command {
	var in mutate.TaskEdit
	var subtasks []string
	var dependsOn []string
	var linkedEvent string

	cmd := &cobra.Command{
		Use:   "edit-task <item-id>",
		Short: "Edit a task (full form: omitted date/recurrence fields are cleared)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("subtask") {
				in.Subtasks = []model.Subtask{}
				for _, text := range subtasks {
					in.Subtasks = append(in.Subtasks, model.Subtask{Text: text})
				}
			}
			if cmd.Flags().Changed("depends-on") {
				in.DependsOn = &dependsOn
			}
			if cmd.Flags().Changed("linked-event") {
				in.LinkedEvent = &linkedEvent
			}
			return runMutation(cmd, app, "edit task", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.SaveTaskEdit(items, args[0], in, now, today)
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&in.TimeState, "time-state", "", "Time state (open|due-by|recurring)")
	cmd.Flags().StringVar(&in.Status, "status", "", "Status (active|waiting|done)")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.ActivationDate, "activation", "", "Activation date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.RecurrenceRule, "recurrence", "", "Recurrence rule (daily|weekly|monthly)")
	cmd.Flags().StringSliceVar(&in.Labels, "label", nil, "Labels (15min|browse; repeatable)")
	cmd.Flags().StringArrayVar(&subtasks, "subtask", nil, "Replace subtasks with these texts (repeatable)")
	cmd.Flags().StringSliceVar(&dependsOn, "depends-on", nil, "Replace dependency ids (repeatable; pass none to clear)")
	cmd.Flags().StringVar(&linkedEvent, "linked-event", "", "Linked event id (empty clears)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newItemsEditEventCmd(app *App) *cobra.Command {
	var in mutate.EventEdit
	var allDay bool

	cmd := &cobra.Command{
		Use:   "edit-event <item-id>",
		Short: "Edit an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("all-day") {
				in.AllDay = &allDay
			}
			return runMutation(cmd, app, "edit event", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.SaveEventEdit(items, args[0], in, now)
			})
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Event title (required)")
	cmd.Flags().StringVar(&in.DateTime, "at", "", "When (empty keeps the current value)")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().StringVar(&in.Location, "location", "", "Location")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newItemsToggleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle <item-id>",
		Short: "Complete a task (recurring tasks spawn their next instance)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "toggle", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.ToggleItem(items, args[0], now, today)
			})
		},
	}
	return cmd
}

func newItemsToggleSubtaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "toggle-subtask <item-id> <subtask-id>",
		Short: "Flip one subtask's done flag",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "toggle subtask", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.ToggleSubtask(items, args[0], args[1], now)
			})
		},
	}
	return cmd
}

func newItemsReopenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reopen <item-id>",
		Short: "Reopen a done task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "reopen", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.Reopen(items, args[0], now, today)
			})
		},
	}
	return cmd
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item and repair references to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, "delete", func(items *[]model.Item, now int64, today string) (mutate.Result, error) {
				return mutate.Delete(items, args[0])
			})
		},
	}
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer s.Close(cmd.Context())

			it, ok := s.Item(args[0])
			if !ok {
				return writeErr(cmd, mutate.NotFoundError{Kind: "item", ID: args[0]})
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"item": it}})
		},
	}
	return cmd
}
