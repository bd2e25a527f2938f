// Package recur computes successor occurrences for recurring tasks.
package recur

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
)

// NextDue returns the due date following dueDate under rule. Monthly advances
// to the same day-of-month next month, clamped to that month's last valid day
// (Jan 31 -> Feb 28/29). An invalid dueDate falls back to tomorrow; an invalid
// rule falls back to daily.
func NextDue(dueDate string, rule model.Recurrence, today string) string {
	if !dateutil.ValidDate(dueDate) {
		return dateutil.AddDays(today, 1)
	}
	if !model.ValidRecurrence(rule) {
		rule = model.RecurDaily
	}
	switch rule {
	case model.RecurWeekly:
		return dateutil.AddDays(dueDate, 7)
	case model.RecurMonthly:
		t, _ := time.ParseInLocation("2006-01-02", dueDate, time.Local)
		y, m, d := t.Date()
		m++
		if m > 12 {
			m = 1
			y++
		}
		// Day 0 of the month after next is the last day of the target month.
		last := time.Date(y, m+1, 0, 0, 0, 0, 0, time.Local).Day()
		if d > last {
			d = last
		}
		return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
	default:
		return dateutil.AddDays(dueDate, 1)
	}
}

// NextInstance builds the successor task spawned when a recurring task
// completes: fresh id, next due date, active status, subtasks reset to
// unchecked with text preserved, same rule/labels/title. Dependencies and the
// event link do not carry over.
func NextInstance(task model.Item, now int64, today string) model.Item {
	var subtasks []model.Subtask
	for _, s := range task.Subtasks {
		subtasks = append(subtasks, model.Subtask{
			ID:   uuid.NewString(),
			Text: s.Text,
			Done: false,
		})
	}
	var labels []string
	if task.Labels != nil {
		labels = append([]string(nil), task.Labels...)
	}
	return model.Item{
		ID:             uuid.NewString(),
		Type:           model.TypeTask,
		Title:          task.Title,
		TimeState:      model.TimeRecurring,
		Status:         model.StatusActive,
		DueDate:        NextDue(task.DueDate, task.RecurrenceRule, today),
		RecurrenceRule: task.RecurrenceRule,
		Subtasks:       subtasks,
		Labels:         labels,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
