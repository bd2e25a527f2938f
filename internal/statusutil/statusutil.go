// Package statusutil holds the pure status-machine logic: dependency and
// subtask gating for completion, the derived blocked/stale flags, and the
// transition gatekeeper every status change funnels through.
package statusutil

import (
	"github.com/snackdriven/tender-circuit/internal/model"
)

// IsBlocked reports whether any dependency resolves to an existing task that
// is not done. A dangling dependency id is not blocking.
func IsBlocked(items []model.Item, task model.Item) bool {
	for _, depID := range task.DependsOn {
		dep := model.FindItem(items, depID)
		if dep != nil && dep.Status != model.StatusDone {
			return true
		}
	}
	return false
}

// CanComplete reports whether task may transition to done: not blocked, and
// every subtask checked off.
func CanComplete(items []model.Item, task model.Item) bool {
	if IsBlocked(items, task) {
		return false
	}
	return task.SubtasksDone()
}

// IsStale reports whether an open, active task has gone untouched past the
// freshness threshold. Informational only; never gates anything.
func IsStale(task model.Item, now int64) bool {
	return task.IsTask() &&
		task.TimeState == model.TimeOpen &&
		task.Status == model.StatusActive &&
		now-task.UpdatedAt > int64(model.StaleDays)*model.DayMillis
}

// Transition moves task to next, enforcing the completion gate. On success the
// status updates and updatedAt advances; on failure nothing mutates.
func Transition(items []model.Item, task *model.Item, next model.Status, now int64) bool {
	if !model.ValidStatus(next) {
		return false
	}
	if next == model.StatusDone && !CanComplete(items, *task) {
		return false
	}
	task.Status = next
	task.UpdatedAt = now
	return true
}
