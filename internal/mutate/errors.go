package mutate

import (
	"errors"
	"fmt"
)

// Input validation failures: the caller declines the payload and re-prompts;
// never fatal.
var (
	ErrEmptyTitle      = errors.New("title required")
	ErrInvalidDateTime = errors.New("event date does not match its all-day flag")
	ErrNotTask         = errors.New("not a task")
	ErrNotEvent        = errors.New("not an event")
	ErrInvalidStatus   = errors.New("invalid status")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Business-rule rejections: reported as user-facing messages, never
// exceptions.

type BlockedError struct {
	ID string
}

func (e BlockedError) Error() string {
	return "can't complete — blocked by dependencies"
}

type SubtasksIncompleteError struct {
	ID string
}

func (e SubtasksIncompleteError) Error() string {
	return "can't complete — finish subtasks first"
}

type RecurringReopenError struct {
	ID string
}

func (e RecurringReopenError) Error() string {
	return "can't reopen recurring tasks — create a new one instead"
}
