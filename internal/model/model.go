package model

type ItemType string

const (
	TypeTask  ItemType = "task"
	TypeEvent ItemType = "event"
)

type TimeState string

const (
	TimeDueBy     TimeState = "due-by"
	TimeOpen      TimeState = "open"
	TimeRecurring TimeState = "recurring"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusWaiting Status = "waiting"
	StatusDone    Status = "done"
)

type Recurrence string

const (
	RecurDaily   Recurrence = "daily"
	RecurWeekly  Recurrence = "weekly"
	RecurMonthly Recurrence = "monthly"
)

const (
	TitleMax       = 500
	LocationMax    = 500
	NotesMax       = 2000
	SubtaskTextMax = 500

	ActiveWindowDays = 10
	StaleDays        = 14
	PurgeDays        = 90
	MaxUndo          = 20
	DoneViewCap      = 50

	DayMillis = int64(86400000)
)

// Labels is the fixed label vocabulary. Unknown labels are dropped on
// validation; duplicates collapse.
var Labels = []string{"15min", "browse"}

type Subtask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Item is either a task or an event; the two kinds share an id space and a
// single collection. Type decides which fields are meaningful.
type Item struct {
	ID    string   `json:"id"`
	Type  ItemType `json:"type"`
	Title string   `json:"title"`

	// Task fields.
	TimeState      TimeState  `json:"timeState,omitempty"`
	Status         Status     `json:"status,omitempty"`
	DueDate        string     `json:"dueDate,omitempty"`
	ActivationDate string     `json:"activationDate,omitempty"`
	RecurrenceRule Recurrence `json:"recurrenceRule,omitempty"`
	Subtasks       []Subtask  `json:"subtasks,omitempty"`
	DependsOn      []string   `json:"dependsOn,omitempty"`
	LinkedEvent    string     `json:"linkedEvent,omitempty"`
	Labels         []string   `json:"labels,omitempty"`

	// Event fields. DateTime is YYYY-MM-DD when AllDay, otherwise a
	// YYYY-MM-DDTHH:MM datetime string.
	DateTime string `json:"dateTime,omitempty"`
	AllDay   bool   `json:"allDay,omitempty"`
	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`

	// Epoch milliseconds. UpdatedAt advances on every task mutation.
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

func (it Item) IsTask() bool  { return it.Type == TypeTask }
func (it Item) IsEvent() bool { return it.Type == TypeEvent }

func (it Item) HasLabel(label string) bool {
	for _, l := range it.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func (it Item) SubtasksDone() bool {
	for _, s := range it.Subtasks {
		if !s.Done {
			return false
		}
	}
	return true
}

// Clone returns a deep copy; items are immutable-by-replacement and must not
// alias slices across collection snapshots.
func (it Item) Clone() Item {
	out := it
	if it.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), it.Subtasks...)
	}
	if it.DependsOn != nil {
		out.DependsOn = append([]string(nil), it.DependsOn...)
	}
	if it.Labels != nil {
		out.Labels = append([]string(nil), it.Labels...)
	}
	return out
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusWaiting, StatusDone:
		return true
	}
	return false
}

func ValidTimeState(ts TimeState) bool {
	switch ts {
	case TimeDueBy, TimeOpen, TimeRecurring:
		return true
	}
	return false
}

func ValidRecurrence(r Recurrence) bool {
	switch r {
	case RecurDaily, RecurWeekly, RecurMonthly:
		return true
	}
	return false
}

func ValidLabel(l string) bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// FindItem returns a pointer into items, or nil.
func FindItem(items []Item, id string) *Item {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
