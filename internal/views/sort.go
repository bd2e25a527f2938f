package views

import (
	"sort"
	"strings"

	"github.com/snackdriven/tender-circuit/internal/model"
)

// Sort option names for the views that expose a user-selectable order.
const (
	SortLabelPriority = "label-priority"
	SortAlpha         = "alpha"
	SortNewest        = "newest"
	SortDue           = "due"
)

// noDue sorts items without a due date after every dated item.
const noDue = "￿"

func sortForView(items []model.Item, view, order string) {
	switch view {
	case "calendar":
		// Events before tasks; events by datetime; ties by createdAt.
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.IsEvent() != b.IsEvent() {
				return a.IsEvent()
			}
			if a.IsEvent() && b.IsEvent() && a.DateTime != b.DateTime {
				return a.DateTime < b.DateTime
			}
			return a.CreatedAt < b.CreatedAt
		})
	case "active":
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.DueDate != b.DueDate {
				return a.DueDate < b.DueDate
			}
			if a.ActivationDate != b.ActivationDate {
				return a.ActivationDate < b.ActivationDate
			}
			return a.CreatedAt < b.CreatedAt
		})
	case "overdue":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DueDate < items[j].DueDate
		})
	case "browse":
		sortBrowse(items, order)
	case "recurring":
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			if a.DueDate != b.DueDate {
				return a.DueDate < b.DueDate
			}
			return a.Title < b.Title
		})
	case "done":
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].UpdatedAt > items[j].UpdatedAt
		})
	case "all":
		sortAll(items, order)
	}
}

func sortBrowse(items []model.Item, order string) {
	switch order {
	case SortAlpha:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	case SortNewest:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt > items[j].CreatedAt
		})
	default:
		// Label priority: quick 15min tasks first, then nearest due date,
		// then oldest first.
		sort.SliceStable(items, func(i, j int) bool {
			a, b := items[i], items[j]
			a15, b15 := a.HasLabel("15min"), b.HasLabel("15min")
			if a15 != b15 {
				return a15
			}
			ad, bd := a.DueDate, b.DueDate
			if ad == "" {
				ad = noDue
			}
			if bd == "" {
				bd = noDue
			}
			if ad != bd {
				return ad < bd
			}
			return a.CreatedAt < b.CreatedAt
		})
	}
}

func sortAll(items []model.Item, order string) {
	switch order {
	case SortAlpha:
		sort.SliceStable(items, func(i, j int) bool {
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		})
	case SortDue:
		sort.SliceStable(items, func(i, j int) bool {
			ad, bd := dueKey(items[i]), dueKey(items[j])
			if ad != bd {
				return ad < bd
			}
			return items[i].CreatedAt > items[j].CreatedAt
		})
	default: // newest
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt > items[j].CreatedAt
		})
	}
}

// dueKey orders by the item's temporal anchor: task due date or event date.
func dueKey(it model.Item) string {
	if it.IsEvent() {
		if len(it.DateTime) >= 10 {
			return it.DateTime[:10]
		}
		return noDue
	}
	if it.DueDate == "" {
		return noDue
	}
	return it.DueDate
}
