package validate

import (
	"testing"

	"github.com/snackdriven/tender-circuit/internal/model"
)

const (
	testNow   = int64(1756339200000) // 2026-08-28 local millis, approximately
	testToday = "2026-08-28"
)

func TestItem_RejectsHardFailures(t *testing.T) {
	cases := []map[string]any{
		nil,
		{"title": "no type"},
		{"type": "note", "title": "unknown type"},
		{"type": "task", "title": "   "},
		{"type": "event", "title": "bad datetime", "dateTime": "not-a-date"},
		{"type": "event", "title": "all-day with time", "dateTime": "2026-09-01T10:00", "allDay": true},
		{"type": "event", "title": "timed with bare date", "dateTime": "2026-09-01"},
	}
	for i, raw := range cases {
		if it := Item(raw, testNow, testToday); it != nil {
			t.Fatalf("case %d: expected reject, got %+v", i, it)
		}
	}
}

func TestItem_RepairsSoftFailures(t *testing.T) {
	raw := map[string]any{
		"type":           "task",
		"title":          "  trim me  ",
		"timeState":      "someday",
		"status":         "archived",
		"dueDate":        "next tuesday",
		"recurrenceRule": "yearly",
		"labels":         []any{"15min", "urgent", "15min", "browse"},
		"subtasks": []any{
			map[string]any{"id": "s1", "text": "keep", "done": true},
			map[string]any{"text": "   "},
			"not a subtask",
		},
		"dependsOn": []any{"a", "", "a", 42, "b"},
	}
	it := Item(raw, testNow, testToday)
	if it == nil {
		t.Fatalf("expected repair, got reject")
	}
	if it.Title != "trim me" {
		t.Fatalf("title = %q", it.Title)
	}
	if it.TimeState != model.TimeOpen {
		t.Fatalf("timeState = %q", it.TimeState)
	}
	if it.Status != model.StatusActive {
		t.Fatalf("status = %q", it.Status)
	}
	if it.DueDate != "" {
		t.Fatalf("expected malformed due date blanked, got %q", it.DueDate)
	}
	if it.RecurrenceRule != "" {
		t.Fatalf("expected invalid rule dropped, got %q", it.RecurrenceRule)
	}
	if len(it.Labels) != 2 || it.Labels[0] != "15min" || it.Labels[1] != "browse" {
		t.Fatalf("labels = %v", it.Labels)
	}
	if len(it.Subtasks) != 1 || it.Subtasks[0].ID != "s1" || !it.Subtasks[0].Done {
		t.Fatalf("subtasks = %v", it.Subtasks)
	}
	if len(it.DependsOn) != 2 || it.DependsOn[0] != "a" || it.DependsOn[1] != "b" {
		t.Fatalf("dependsOn = %v", it.DependsOn)
	}
	if it.ID == "" {
		t.Fatalf("expected generated id")
	}
	if it.CreatedAt != testNow || it.UpdatedAt != testNow {
		t.Fatalf("timestamps = %d/%d", it.CreatedAt, it.UpdatedAt)
	}
}

func TestItem_ValidTaskRoundTripsUnchanged(t *testing.T) {
	raw := map[string]any{
		"id":             "t1",
		"type":           "task",
		"title":          "stable",
		"timeState":      "due-by",
		"status":         "waiting",
		"dueDate":        "2026-09-10",
		"activationDate": "2026-09-01",
		"createdAt":      float64(100),
		"updatedAt":      float64(200),
	}
	it := Item(raw, testNow, testToday)
	if it == nil {
		t.Fatalf("expected valid item")
	}
	if it.ID != "t1" || it.TimeState != model.TimeDueBy || it.Status != model.StatusWaiting {
		t.Fatalf("unexpected coercion: %+v", it)
	}
	if it.DueDate != "2026-09-10" || it.ActivationDate != "2026-09-01" {
		t.Fatalf("dates changed: %q/%q", it.DueDate, it.ActivationDate)
	}
	if it.CreatedAt != 100 || it.UpdatedAt != 200 {
		t.Fatalf("timestamps changed: %d/%d", it.CreatedAt, it.UpdatedAt)
	}
}

func TestItem_AllDayEvent(t *testing.T) {
	raw := map[string]any{
		"type":     "event",
		"title":    "conference",
		"dateTime": "2026-09-01",
		"allDay":   true,
		"location": "  downtown  ",
	}
	it := Item(raw, testNow, testToday)
	if it == nil {
		t.Fatalf("expected valid all-day event")
	}
	if !it.AllDay || it.DateTime != "2026-09-01" || it.Location != "downtown" {
		t.Fatalf("event = %+v", it)
	}
}

func TestDeriveDates(t *testing.T) {
	// Recurring without a due date anchors at today.
	due, _ := DeriveDates(model.TimeRecurring, "", "", testToday)
	if due != testToday {
		t.Fatalf("recurring due = %q", due)
	}

	// Due-by derives activation = due - window.
	due, act := DeriveDates(model.TimeDueBy, "2026-09-20", "", testToday)
	if due != "2026-09-20" || act != "2026-09-10" {
		t.Fatalf("derived = %q/%q", due, act)
	}

	// Derived activation clamps up to today for near-term due dates.
	_, act = DeriveDates(model.TimeDueBy, "2026-09-01", "", testToday)
	if act != testToday {
		t.Fatalf("clamped activation = %q", act)
	}

	// Activation never lands after the due date.
	_, act = DeriveDates(model.TimeDueBy, "2026-09-01", "2026-09-05", testToday)
	if act != "2026-09-01" {
		t.Fatalf("activation past due = %q", act)
	}
}

func TestCleanOrphanDependencies(t *testing.T) {
	items := []model.Item{
		{ID: "a", Type: model.TypeTask, Title: "a"},
		{ID: "b", Type: model.TypeTask, Title: "b", DependsOn: []string{"a", "gone", "also-gone"}},
	}
	if !CleanOrphanDependencies(items) {
		t.Fatalf("expected change")
	}
	if len(items[1].DependsOn) != 1 || items[1].DependsOn[0] != "a" {
		t.Fatalf("dependsOn = %v", items[1].DependsOn)
	}
	if CleanOrphanDependencies(items) {
		t.Fatalf("expected idempotent second pass")
	}

	only := []model.Item{
		{ID: "x", Type: model.TypeTask, Title: "x", DependsOn: []string{"gone"}},
	}
	if !CleanOrphanDependencies(only) {
		t.Fatalf("expected change")
	}
	if only[0].DependsOn != nil {
		t.Fatalf("expected nil dependsOn, got %v", only[0].DependsOn)
	}
}

func TestItems_DropsNonObjects(t *testing.T) {
	raws := []any{
		"junk",
		42,
		map[string]any{"type": "task", "title": "ok"},
		map[string]any{"type": "task", "title": ""},
	}
	items := Items(raws, testNow, testToday)
	if len(items) != 1 || items[0].Title != "ok" {
		t.Fatalf("items = %+v", items)
	}
}
