// Package views projects the item collection into each named view through a
// small library of composable predicates plus a per-view total order.
package views

import (
	"strings"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
)

// Predicate is a unary filter over items; views compose them with AllOf/AnyOf.
type Predicate func(model.Item) bool

func AllOf(preds ...Predicate) Predicate {
	return func(it model.Item) bool {
		for _, p := range preds {
			if !p(it) {
				return false
			}
		}
		return true
	}
}

func AnyOf(preds ...Predicate) Predicate {
	return func(it model.Item) bool {
		for _, p := range preds {
			if p(it) {
				return true
			}
		}
		return false
	}
}

func IsTask(it model.Item) bool      { return it.IsTask() }
func IsEvent(it model.Item) bool     { return it.IsEvent() }
func IsDone(it model.Item) bool      { return it.Status == model.StatusDone }
func NotDone(it model.Item) bool     { return it.Status != model.StatusDone }
func IsDueBy(it model.Item) bool     { return it.TimeState == model.TimeDueBy }
func IsOpen(it model.Item) bool      { return it.TimeState == model.TimeOpen }
func IsRecurring(it model.Item) bool { return it.TimeState == model.TimeRecurring }

// IsActiveish matches tasks still in play (active or waiting).
func IsActiveish(it model.Item) bool {
	return it.Status == model.StatusActive || it.Status == model.StatusWaiting
}

func HasLabel(label string) Predicate {
	return func(it model.Item) bool { return it.HasLabel(label) }
}

// OnDate matches tasks due on d and events occurring on d.
func OnDate(d string) Predicate {
	return func(it model.Item) bool {
		if it.DueDate == d {
			return true
		}
		return it.DateTime != "" && strings.HasPrefix(it.DateTime, d)
	}
}

// InWindow matches items inside their activation window: activation has
// arrived, the due date hasn't passed, and the due date is within the horizon.
// windowEnd == "" means an unbounded horizon.
func InWindow(today, windowEnd string) Predicate {
	return func(it model.Item) bool {
		if it.ActivationDate == "" || it.DueDate == "" {
			return false
		}
		if it.ActivationDate > today || it.DueDate < today {
			return false
		}
		return windowEnd == "" || it.DueDate <= windowEnd
	}
}

func Overdue(today string) Predicate {
	return func(it model.Item) bool { return it.DueDate != "" && it.DueDate < today }
}

func RecurringDue(today string) Predicate {
	return func(it model.Item) bool { return it.DueDate != "" && it.DueDate <= today }
}

// Params are the view-scoped query parameters: the selected calendar date,
// search text, active-window horizon and per-view sort overrides.
type Params struct {
	Today        string
	SelectedDate string
	Search       string

	// HorizonDays bounds the active window end at today+N; <= 0 means
	// unbounded.
	HorizonDays int

	// Sort selects among the user-selectable orders for browse
	// (label-priority | alpha | newest) and all (newest | alpha | due).
	Sort string

	// Type optionally restricts the all view to "task" or "event".
	Type string
}

// Known view names.
var Names = []string{"calendar", "active", "overdue", "browse", "recurring", "done", "all"}

func Known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Items filters, sorts and windows the collection for the named view. The
// input is not mutated; unknown view names yield nil.
func Items(items []model.Item, view string, p Params) []model.Item {
	today := p.Today
	if today == "" {
		today = dateutil.Today()
	}
	selected := p.SelectedDate
	if selected == "" {
		selected = today
	}
	windowEnd := ""
	if p.HorizonDays > 0 {
		windowEnd = dateutil.AddDays(today, p.HorizonDays)
	}

	var filter Predicate
	switch view {
	case "calendar":
		filter = OnDate(selected)
	case "active":
		filter = AllOf(IsTask, IsDueBy, IsActiveish, InWindow(today, windowEnd))
	case "overdue":
		filter = AllOf(IsTask, IsDueBy, IsActiveish, Overdue(today))
	case "browse":
		filter = AllOf(IsTask, IsActiveish, AnyOf(IsOpen, HasLabel("browse"), HasLabel("15min")))
	case "recurring":
		filter = AllOf(IsTask, IsRecurring, RecurringDue(today), NotDone)
	case "done":
		filter = IsDone
	case "all":
		filter = func(model.Item) bool { return true }
		if p.Type == string(model.TypeTask) {
			filter = IsTask
		} else if p.Type == string(model.TypeEvent) {
			filter = IsEvent
		}
	default:
		return nil
	}

	var result []model.Item
	for _, it := range items {
		if filter(it) {
			result = append(result, it.Clone())
		}
	}

	if view == "all" && p.Search != "" {
		q := strings.ToLower(p.Search)
		kept := result[:0]
		for _, it := range result {
			if strings.Contains(strings.ToLower(it.Title), q) {
				kept = append(kept, it)
			}
		}
		result = kept
	}

	sortForView(result, view, p.Sort)

	if view == "done" && len(result) > model.DoneViewCap {
		result = result[:model.DoneViewCap]
	}
	return result
}
