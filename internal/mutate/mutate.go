// Package mutate implements every collection mutation. Operations take the
// collection by pointer, validate and normalize their payloads, and report a
// Result; they never panic and never partially apply on rejection. Callers
// wrap them in the session's mutation wrapper, which handles snapshots,
// persistence and sync.
package mutate

import "github.com/snackdriven/tender-circuit/internal/model"

// Result describes one applied (or declined) mutation.
type Result struct {
	// Item is the primary entity touched, nil when it no longer exists.
	Item *model.Item `json:"item,omitempty"`

	// Changed reports whether the collection differs; the mutation wrapper
	// discards its snapshot when false.
	Changed bool `json:"changed"`

	// Note carries a user-facing remark for partially honored operations
	// (e.g. an edit whose status change was rejected).
	Note string `json:"note,omitempty"`

	// Spawned is the successor instance created by completing a recurring
	// task.
	Spawned *model.Item `json:"spawned,omitempty"`
}
