package mutate

import (
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/recur"
	"github.com/snackdriven/tender-circuit/internal/statusutil"
)

// ToggleItem completes a task through the status gate. Done tasks are a no-op
// here (reopening is explicit). Completing a recurring task atomically spawns
// the next occurrence in the same mutation.
func ToggleItem(items *[]model.Item, id string, now int64, today string) (Result, error) {
	task := model.FindItem(*items, id)
	if task == nil {
		return Result{}, NotFoundError{Kind: "task", ID: id}
	}
	if !task.IsTask() {
		return Result{}, ErrNotTask
	}

	if task.Status == model.StatusDone {
		return Result{Item: task, Changed: false, Note: "already done — reopen instead"}, nil
	}

	if task.TimeState == model.TimeRecurring {
		if !statusutil.Transition(*items, task, model.StatusDone, now) {
			return Result{}, completionError(*items, *task)
		}
		next := recur.NextInstance(*task, now, today)
		*items = append(*items, next)
		// append may relocate the backing array; re-resolve the task.
		task = model.FindItem(*items, id)
		return Result{Item: task, Changed: true, Spawned: &(*items)[len(*items)-1]}, nil
	}

	if !statusutil.Transition(*items, task, model.StatusDone, now) {
		return Result{}, completionError(*items, *task)
	}
	return Result{Item: task, Changed: true}, nil
}

// ToggleSubtask flips one subtask's done flag and stamps the parent.
func ToggleSubtask(items *[]model.Item, id, subtaskID string, now int64) (Result, error) {
	task := model.FindItem(*items, id)
	if task == nil {
		return Result{}, NotFoundError{Kind: "task", ID: id}
	}
	if !task.IsTask() {
		return Result{}, ErrNotTask
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Done = !task.Subtasks[i].Done
			task.UpdatedAt = now
			return Result{Item: task, Changed: true}, nil
		}
	}
	return Result{}, NotFoundError{Kind: "subtask", ID: subtaskID}
}

// Reopen transitions a done task back to active. Due-by tasks restart their
// activation window at today. Recurring tasks cannot reopen; they are
// superseded by new instances.
func Reopen(items *[]model.Item, id string, now int64, today string) (Result, error) {
	task := model.FindItem(*items, id)
	if task == nil {
		return Result{}, NotFoundError{Kind: "task", ID: id}
	}
	if !task.IsTask() {
		return Result{}, ErrNotTask
	}
	if task.TimeState == model.TimeRecurring {
		return Result{}, RecurringReopenError{ID: id}
	}

	if task.TimeState == model.TimeDueBy {
		task.ActivationDate = today
	}
	if !statusutil.Transition(*items, task, model.StatusActive, now) {
		return Result{Item: task, Changed: false}, nil
	}
	return Result{Item: task, Changed: true}, nil
}

func completionError(items []model.Item, task model.Item) error {
	if statusutil.IsBlocked(items, task) {
		return BlockedError{ID: task.ID}
	}
	return SubtasksIncompleteError{ID: task.ID}
}
