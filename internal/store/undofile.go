package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/snackdriven/tender-circuit/internal/undo"
)

func (s Store) undoPath() string { return filepath.Join(s.Dir, undoFileName) }

// LoadUndo reads the persisted undo stack; a missing or corrupt file yields an
// empty stack (undo history is best-effort, never fatal).
func (s Store) LoadUndo() *undo.Stack {
	stack := undo.NewStack(undo.DefaultDepth)
	raw, err := os.ReadFile(s.undoPath())
	if err != nil {
		return stack
	}
	var entries []undo.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return stack
	}
	stack.Restore(entries)
	return stack
}

func (s Store) SaveUndo(stack *undo.Stack) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.Marshal(stack.Entries())
	if err != nil {
		return err
	}
	return os.WriteFile(s.undoPath(), b, 0o644)
}
