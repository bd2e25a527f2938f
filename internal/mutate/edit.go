package mutate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/statusutil"
	"github.com/snackdriven/tender-circuit/internal/validate"
)

// TaskEdit is the save-task-edit payload. Pointer fields are tri-state:
// nil leaves the field untouched.
type TaskEdit struct {
	Title          string
	TimeState      string
	Status         string
	DueDate        string
	ActivationDate string
	RecurrenceRule string
	Labels         []string
	Subtasks       []model.Subtask

	// DependsOn replaces the dependency set when non-nil; ids that don't
	// resolve to tasks are dropped.
	DependsOn *[]string

	// LinkedEvent replaces the event link when non-nil; an empty string
	// clears it, an unknown id is rejected.
	LinkedEvent *string
}

// SaveTaskEdit applies an edit payload to an existing task. A status change
// that the completion gate rejects keeps the previous status while the rest of
// the edit still applies; the Result notes it.
func SaveTaskEdit(items *[]model.Item, id string, in TaskEdit, now int64, today string) (Result, error) {
	task := model.FindItem(*items, id)
	if task == nil {
		return Result{}, NotFoundError{Kind: "task", ID: id}
	}
	if !task.IsTask() {
		return Result{}, ErrNotTask
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}

	// Resolve anything that can reject before the first field write, so a
	// failed edit leaves the task untouched.
	if in.LinkedEvent != nil && *in.LinkedEvent != "" {
		ev := model.FindItem(*items, *in.LinkedEvent)
		if ev == nil || !ev.IsEvent() {
			return Result{}, NotFoundError{Kind: "event", ID: *in.LinkedEvent}
		}
	}

	task.Title = truncate(title, model.TitleMax)

	if model.ValidTimeState(model.TimeState(in.TimeState)) {
		task.TimeState = model.TimeState(in.TimeState)
	}

	task.DueDate = in.DueDate
	if !dateutil.ValidDate(task.DueDate) {
		task.DueDate = ""
	}
	task.ActivationDate = in.ActivationDate
	if !dateutil.ValidDate(task.ActivationDate) {
		task.ActivationDate = ""
	}
	task.DueDate, task.ActivationDate = validate.DeriveDates(task.TimeState, task.DueDate, task.ActivationDate, today)

	task.RecurrenceRule = ""
	if task.TimeState == model.TimeRecurring && model.ValidRecurrence(model.Recurrence(in.RecurrenceRule)) {
		task.RecurrenceRule = model.Recurrence(in.RecurrenceRule)
	}

	task.Labels = nil
	for _, l := range in.Labels {
		if model.ValidLabel(l) && !task.HasLabel(l) {
			task.Labels = append(task.Labels, l)
		}
	}

	if in.Subtasks != nil {
		var subtasks []model.Subtask
		for _, s := range in.Subtasks {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			id := s.ID
			if id == "" {
				id = uuid.NewString()
			}
			subtasks = append(subtasks, model.Subtask{
				ID:   id,
				Text: truncate(text, model.SubtaskTextMax),
				Done: s.Done,
			})
		}
		task.Subtasks = subtasks
	}

	if in.DependsOn != nil {
		var deps []string
		for _, d := range *in.DependsOn {
			if d == id || containsStr(deps, d) {
				continue
			}
			dep := model.FindItem(*items, d)
			if dep != nil && dep.IsTask() {
				deps = append(deps, d)
			}
		}
		task.DependsOn = deps
	}

	if in.LinkedEvent != nil {
		task.LinkedEvent = *in.LinkedEvent
	}

	task.UpdatedAt = now

	res := Result{Item: task, Changed: true}
	if in.Status != "" && in.Status != string(task.Status) {
		next := model.Status(in.Status)
		if !model.ValidStatus(next) || !statusutil.Transition(*items, task, next, now) {
			res.Note = fmt.Sprintf("status kept as %s — other changes saved", task.Status)
		}
	}
	return res, nil
}

// EventEdit is the save-event-edit payload. An empty DateTime keeps the
// current one; AllDay nil keeps the current flag.
type EventEdit struct {
	Title    string
	DateTime string
	AllDay   *bool
	Location string
	Notes    string
}

func SaveEventEdit(items *[]model.Item, id string, in EventEdit, now int64) (Result, error) {
	event := model.FindItem(*items, id)
	if event == nil {
		return Result{}, NotFoundError{Kind: "event", ID: id}
	}
	if !event.IsEvent() {
		return Result{}, ErrNotEvent
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}

	allDay := event.AllDay
	if in.AllDay != nil {
		allDay = *in.AllDay
	}
	dateTime := event.DateTime
	if in.DateTime != "" {
		dateTime = in.DateTime
	}
	if !validEventDateTime(dateTime, allDay) {
		return Result{}, ErrInvalidDateTime
	}

	event.Title = truncate(title, model.TitleMax)
	event.DateTime = dateTime
	event.AllDay = allDay
	event.Location = truncate(strings.TrimSpace(in.Location), model.LocationMax)
	event.Notes = truncate(strings.TrimSpace(in.Notes), model.NotesMax)
	return Result{Item: event, Changed: true}, nil
}
