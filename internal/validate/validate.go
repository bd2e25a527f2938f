// Package validate normalizes untrusted item records into valid entities.
//
// Validation has two explicit layers: hard rejects (unrecognized type, empty
// title, malformed event datetime) return nil, while everything else is
// repaired in place — bad enums fall back to defaults, malformed dates become
// absent, strings are trimmed and capped, arrays are filtered to well-formed
// elements. Stored and pulled data always passes back through here; nothing
// deserialized is trusted blindly.
package validate

import (
	"strings"

	"github.com/google/uuid"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
)

// Item normalizes one raw deserialized object. now is epoch millis, today the
// local calendar date; both drive default derivation.
func Item(raw map[string]any, now int64, today string) *model.Item {
	if raw == nil {
		return nil
	}
	switch str(raw, "type") {
	case string(model.TypeEvent):
		return validateEvent(raw, now)
	case string(model.TypeTask):
		return validateTask(raw, now, today)
	}
	return nil
}

// Items normalizes a decoded array, dropping anything that rejects.
func Items(raws []any, now int64, today string) []model.Item {
	out := make([]model.Item, 0, len(raws))
	for _, r := range raws {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		if it := Item(m, now, today); it != nil {
			out = append(out, *it)
		}
	}
	return out
}

func validateEvent(raw map[string]any, now int64) *model.Item {
	title := strings.TrimSpace(str(raw, "title"))
	if title == "" {
		return nil
	}
	allDay := boolean(raw, "allDay")
	dt := str(raw, "dateTime")
	if allDay {
		if !dateutil.ValidDate(dt) {
			return nil
		}
	} else if !dateutil.ValidDateTime(dt) {
		return nil
	}

	return &model.Item{
		ID:        idOr(raw),
		Type:      model.TypeEvent,
		Title:     truncate(title, model.TitleMax),
		DateTime:  dt,
		AllDay:    allDay,
		Location:  truncate(strings.TrimSpace(str(raw, "location")), model.LocationMax),
		Notes:     truncate(strings.TrimSpace(str(raw, "notes")), model.NotesMax),
		CreatedAt: millisOr(raw, "createdAt", now),
	}
}

func validateTask(raw map[string]any, now int64, today string) *model.Item {
	title := strings.TrimSpace(str(raw, "title"))
	if title == "" {
		return nil
	}

	timeState := model.TimeState(str(raw, "timeState"))
	if !model.ValidTimeState(timeState) {
		timeState = model.TimeOpen
	}
	status := model.Status(str(raw, "status"))
	if !model.ValidStatus(status) {
		status = model.StatusActive
	}
	createdAt := millisOr(raw, "createdAt", now)
	updatedAt := millisOr(raw, "updatedAt", createdAt)

	dueDate := str(raw, "dueDate")
	if !dateutil.ValidDate(dueDate) {
		dueDate = ""
	}
	activationDate := str(raw, "activationDate")
	if !dateutil.ValidDate(activationDate) {
		activationDate = ""
	}
	dueDate, activationDate = DeriveDates(timeState, dueDate, activationDate, today)

	rule := model.Recurrence(str(raw, "recurrenceRule"))
	if !model.ValidRecurrence(rule) {
		rule = ""
	}

	var labels []string
	if rawLabels, ok := raw["labels"].([]any); ok {
		for _, l := range rawLabels {
			s, _ := l.(string)
			if model.ValidLabel(s) && !contains(labels, s) {
				labels = append(labels, s)
			}
		}
	}

	var subtasks []model.Subtask
	if rawSubs, ok := raw["subtasks"].([]any); ok {
		for _, r := range rawSubs {
			m, ok := r.(map[string]any)
			if !ok {
				continue
			}
			text := strings.TrimSpace(str(m, "text"))
			if text == "" {
				continue
			}
			id := str(m, "id")
			if id == "" {
				id = uuid.NewString()
			}
			subtasks = append(subtasks, model.Subtask{
				ID:   id,
				Text: truncate(text, model.SubtaskTextMax),
				Done: boolean(m, "done"),
			})
		}
	}

	var dependsOn []string
	if rawDeps, ok := raw["dependsOn"].([]any); ok {
		for _, d := range rawDeps {
			if s, ok := d.(string); ok && s != "" && !contains(dependsOn, s) {
				dependsOn = append(dependsOn, s)
			}
		}
	}

	return &model.Item{
		ID:             idOr(raw),
		Type:           model.TypeTask,
		Title:          truncate(title, model.TitleMax),
		TimeState:      timeState,
		Status:         status,
		DueDate:        dueDate,
		ActivationDate: activationDate,
		RecurrenceRule: rule,
		Subtasks:       subtasks,
		DependsOn:      dependsOn,
		LinkedEvent:    str(raw, "linkedEvent"),
		Labels:         labels,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

// DeriveDates applies the shared default-derivation rules for task dates:
// recurring tasks always get a due date, due-by tasks get an activation date
// derived from the due date and clamped into [today, dueDate].
func DeriveDates(timeState model.TimeState, dueDate, activationDate, today string) (due, activation string) {
	if timeState == model.TimeRecurring && dueDate == "" {
		dueDate = today
	}
	if timeState == model.TimeDueBy && dueDate != "" && activationDate == "" {
		activationDate = dateutil.AddDays(dueDate, -model.ActiveWindowDays)
		if activationDate < today {
			activationDate = today
		}
	}
	if activationDate != "" && dueDate != "" && activationDate > dueDate {
		activationDate = dueDate
	}
	return dueDate, activationDate
}

// CleanOrphanDependencies prunes dependsOn entries pointing at ids that no
// longer exist in the collection. Reports whether anything changed.
func CleanOrphanDependencies(items []model.Item) bool {
	ids := make(map[string]bool, len(items))
	for _, it := range items {
		ids[it.ID] = true
	}
	changed := false
	for i := range items {
		deps := items[i].DependsOn
		if len(deps) == 0 {
			continue
		}
		kept := deps[:0]
		for _, d := range deps {
			if ids[d] {
				kept = append(kept, d)
			} else {
				changed = true
			}
		}
		if len(kept) == 0 {
			items[i].DependsOn = nil
		} else {
			items[i].DependsOn = kept
		}
	}
	return changed
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func boolean(m map[string]any, k string) bool {
	b, _ := m[k].(bool)
	return b
}

// millisOr reads a positive epoch-millis number, falling back otherwise.
// encoding/json decodes numbers as float64.
func millisOr(m map[string]any, k string, fallback int64) int64 {
	f, ok := m[k].(float64)
	if !ok || f <= 0 {
		return fallback
	}
	return int64(f)
}

func idOr(m map[string]any) string {
	if id := str(m, "id"); id != "" {
		return id
	}
	return uuid.NewString()
}

// truncate caps s at max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
