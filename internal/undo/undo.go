// Package undo keeps a bounded stack of whole-collection snapshots. Coarse
// snapshot restore, not an inverse-operation log: each entry is the serialized
// items array as it stood before a mutation.
package undo

import "encoding/json"

const DefaultDepth = 20

type Entry struct {
	Label    string          `json:"label"`
	Snapshot json.RawMessage `json:"snapshot"`
}

type Stack struct {
	max     int
	entries []Entry
}

func NewStack(max int) *Stack {
	if max <= 0 {
		max = DefaultDepth
	}
	return &Stack{max: max}
}

// Push records a snapshot taken before a mutation, evicting the oldest entry
// past the depth bound.
func (s *Stack) Push(label string, snapshot []byte) {
	s.entries = append(s.entries, Entry{Label: label, Snapshot: append([]byte(nil), snapshot...)})
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}

// Pop removes and returns the most recent snapshot.
func (s *Stack) Pop() (Entry, bool) {
	if len(s.entries) == 0 {
		return Entry{}, false
	}
	last := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return last, true
}

func (s *Stack) Len() int { return len(s.entries) }

// Entries exposes the retained snapshots oldest-first, for persistence.
func (s *Stack) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Restore replaces the stack contents (oldest-first), re-applying the bound.
func (s *Stack) Restore(entries []Entry) {
	s.entries = append([]Entry(nil), entries...)
	if len(s.entries) > s.max {
		s.entries = s.entries[len(s.entries)-s.max:]
	}
}
