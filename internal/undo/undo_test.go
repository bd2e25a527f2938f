package undo

import "testing"

func TestStack_PushPop(t *testing.T) {
	s := NewStack(3)
	s.Push("a", []byte("1"))
	s.Push("b", []byte("2"))

	e, ok := s.Pop()
	if !ok || e.Label != "b" || string(e.Snapshot) != "2" {
		t.Fatalf("pop = %+v, %v", e, ok)
	}
	e, ok = s.Pop()
	if !ok || e.Label != "a" {
		t.Fatalf("pop = %+v, %v", e, ok)
	}
	if _, ok := s.Pop(); ok {
		t.Fatalf("expected empty stack")
	}
}

func TestStack_EvictsOldestPastDepth(t *testing.T) {
	s := NewStack(3)
	for _, l := range []string{"a", "b", "c", "d", "e"} {
		s.Push(l, []byte(l))
	}
	if s.Len() != 3 {
		t.Fatalf("len = %d", s.Len())
	}
	entries := s.Entries()
	if entries[0].Label != "c" || entries[2].Label != "e" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestStack_PushCopiesSnapshot(t *testing.T) {
	s := NewStack(0)
	buf := []byte("original")
	s.Push("a", buf)
	buf[0] = 'X'
	e, _ := s.Pop()
	if string(e.Snapshot) != "original" {
		t.Fatalf("snapshot aliased caller buffer: %q", e.Snapshot)
	}
}

func TestStack_Restore(t *testing.T) {
	s := NewStack(2)
	s.Restore([]Entry{
		{Label: "a", Snapshot: []byte("1")},
		{Label: "b", Snapshot: []byte("2")},
		{Label: "c", Snapshot: []byte("3")},
	})
	if s.Len() != 2 {
		t.Fatalf("restore must re-apply the bound, len = %d", s.Len())
	}
	e, _ := s.Pop()
	if e.Label != "c" {
		t.Fatalf("pop after restore = %+v", e)
	}
}
