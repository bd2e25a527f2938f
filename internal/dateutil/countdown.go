package dateutil

import "fmt"

// Countdown classifies how far a due date is from today, for list output.
type Countdown struct {
	Text  string `json:"text"`
	Class string `json:"class"` // overdue | due-soon | due-later
}

func CountdownFor(dueDate, today string) *Countdown {
	if dueDate == "" {
		return nil
	}
	switch {
	case dueDate < today:
		days := DaysBetween(dueDate, today)
		if days == 1 {
			return &Countdown{Text: "1d overdue", Class: "overdue"}
		}
		return &Countdown{Text: fmt.Sprintf("%dd overdue", days), Class: "overdue"}
	case dueDate == today:
		return &Countdown{Text: "Due today", Class: "due-soon"}
	default:
		days := DaysBetween(today, dueDate)
		if days == 1 {
			return &Countdown{Text: "Due tomorrow", Class: "due-soon"}
		}
		if days <= 3 {
			return &Countdown{Text: fmt.Sprintf("%dd left", days), Class: "due-soon"}
		}
		return &Countdown{Text: fmt.Sprintf("%dd left", days), Class: "due-later"}
	}
}
