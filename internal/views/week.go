package views

import (
	"time"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
)

// WeekDay is one cell of the calendar week strip.
type WeekDay struct {
	Date     string `json:"date"`
	Name     string `json:"name"` // Mon, Tue, ...
	Today    bool   `json:"today"`
	Selected bool   `json:"selected"`
	HasItems bool   `json:"hasItems"`
}

// Week builds the Monday-based 7-day strip containing anchor, marking which
// days have dated items.
func Week(items []model.Item, anchor, selected, today string) []WeekDay {
	start := dateutil.WeekStart(anchor)
	out := make([]WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		d := dateutil.AddDays(start, i)
		has := false
		match := OnDate(d)
		for _, it := range items {
			if match(it) {
				has = true
				break
			}
		}
		t, _ := time.ParseInLocation("2006-01-02", d, time.Local)
		out = append(out, WeekDay{
			Date:     d,
			Name:     t.Format("Mon"),
			Today:    d == today,
			Selected: d == selected,
			HasItems: has,
		})
	}
	return out
}
