package mutate

import (
	"strings"

	"github.com/google/uuid"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/validate"
)

// TaskInput is the create-task payload. Zero values mean "unset"; the
// operation coerces rather than rejects everywhere except the title.
type TaskInput struct {
	Title          string
	TimeState      string
	DueDate        string
	ActivationDate string
	RecurrenceRule string
	Labels         []string
	Subtasks       []string // subtask texts; new subtasks start unchecked
}

// CreateTask appends a validated task. New tasks always start active.
func CreateTask(items *[]model.Item, in TaskInput, now int64, today string) (Result, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}

	timeState := model.TimeState(in.TimeState)
	if !model.ValidTimeState(timeState) {
		timeState = model.TimeOpen
	}

	dueDate := in.DueDate
	if !dateutil.ValidDate(dueDate) {
		dueDate = ""
	}
	activationDate := in.ActivationDate
	if !dateutil.ValidDate(activationDate) {
		activationDate = ""
	}
	dueDate, activationDate = validate.DeriveDates(timeState, dueDate, activationDate, today)

	var rule model.Recurrence
	if timeState == model.TimeRecurring && model.ValidRecurrence(model.Recurrence(in.RecurrenceRule)) {
		rule = model.Recurrence(in.RecurrenceRule)
	}

	var labels []string
	for _, l := range in.Labels {
		if model.ValidLabel(l) && !containsStr(labels, l) {
			labels = append(labels, l)
		}
	}

	var subtasks []model.Subtask
	for _, text := range in.Subtasks {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		subtasks = append(subtasks, model.Subtask{
			ID:   uuid.NewString(),
			Text: truncate(text, model.SubtaskTextMax),
			Done: false,
		})
	}

	task := model.Item{
		ID:             uuid.NewString(),
		Type:           model.TypeTask,
		Title:          truncate(title, model.TitleMax),
		TimeState:      timeState,
		Status:         model.StatusActive,
		DueDate:        dueDate,
		ActivationDate: activationDate,
		RecurrenceRule: rule,
		Subtasks:       subtasks,
		Labels:         labels,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	*items = append(*items, task)
	return Result{Item: &(*items)[len(*items)-1], Changed: true}, nil
}

// EventInput is the create-event payload. DateTime must be a calendar date
// when AllDay, a datetime string otherwise.
type EventInput struct {
	Title    string
	DateTime string
	AllDay   bool
	Location string
	Notes    string
}

func CreateEvent(items *[]model.Item, in EventInput, now int64) (Result, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Result{}, ErrEmptyTitle
	}
	if !validEventDateTime(in.DateTime, in.AllDay) {
		return Result{}, ErrInvalidDateTime
	}

	event := model.Item{
		ID:        uuid.NewString(),
		Type:      model.TypeEvent,
		Title:     truncate(title, model.TitleMax),
		DateTime:  in.DateTime,
		AllDay:    in.AllDay,
		Location:  truncate(strings.TrimSpace(in.Location), model.LocationMax),
		Notes:     truncate(strings.TrimSpace(in.Notes), model.NotesMax),
		CreatedAt: now,
	}
	*items = append(*items, event)
	return Result{Item: &(*items)[len(*items)-1], Changed: true}, nil
}

func validEventDateTime(s string, allDay bool) bool {
	if allDay {
		return dateutil.ValidDate(s)
	}
	return dateutil.ValidDateTime(s)
}

func containsStr(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// truncate caps s at max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
