package validate

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
)

const legacyOverdueCutoffDays = 30

// MigrateLegacy converts the deprecated flat todo format ({text, completed,
// dueDate?, createdAt?, id?}) into tasks. Dateless items become open, dated
// items due-by; items already overdue by more than 30 days at migration time
// are auto-marked done. Everything passes back through Item so migrated
// records obey the same invariants as fresh ones.
func MigrateLegacy(raws []any, now int64, today string) []model.Item {
	cutoff := dateutil.AddDays(today, -legacyOverdueCutoffDays)

	out := make([]model.Item, 0, len(raws))
	for _, r := range raws {
		m, ok := r.(map[string]any)
		if !ok {
			continue
		}
		text := strings.TrimSpace(str(m, "text"))
		if text == "" {
			continue
		}

		dueDate := parseLegacyDate(str(m, "dueDate"))
		timeState := model.TimeOpen
		if dueDate != "" {
			timeState = model.TimeDueBy
		}

		status := model.StatusActive
		if boolean(m, "completed") {
			status = model.StatusDone
		}
		if dueDate != "" && status == model.StatusActive && dueDate < cutoff {
			status = model.StatusDone
		}

		activationDate := ""
		if dueDate != "" && status != model.StatusDone {
			activationDate = dateutil.AddDays(dueDate, -model.ActiveWindowDays)
			if activationDate < today {
				activationDate = today
			}
		}

		createdAt := millisOr(m, "createdAt", now)
		id := str(m, "id")
		if id == "" {
			id = uuid.NewString()
		}

		migrated := map[string]any{
			"id":             id,
			"type":           string(model.TypeTask),
			"title":          text,
			"timeState":      string(timeState),
			"status":         string(status),
			"dueDate":        dueDate,
			"activationDate": activationDate,
			"createdAt":      float64(createdAt),
			"updatedAt":      float64(createdAt),
		}
		if it := Item(migrated, now, today); it != nil {
			out = append(out, *it)
		}
	}
	return out
}

// parseLegacyDate accepts canonical YYYY-MM-DD or best-effort parses older
// free-form dates; anything unparseable means dateless.
func parseLegacyDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if dateutil.ValidDate(s) {
		return s
	}
	for _, layout := range []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"01/02/2006",
		"Jan 2, 2006",
		time.RFC3339,
	} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return dateutil.Format(t)
		}
	}
	return ""
}
