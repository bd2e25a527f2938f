package store

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// SyncState is the locally recorded sync watermark. LastSyncedAt is the
// updated_at of the newest remote version this store has seen; a pulled copy
// must beat it to replace local state.
type SyncState struct {
	LastSyncedAt int64 `json:"lastSyncedAt"`
}

func (s Store) syncStatePath() string { return filepath.Join(s.Dir, syncFileName) }

func (s Store) LoadSyncState() SyncState {
	var st SyncState
	raw, err := os.ReadFile(s.syncStatePath())
	if err != nil {
		return st
	}
	// A corrupt watermark resets to zero; the next pull simply re-applies.
	_ = json.Unmarshal(raw, &st)
	return st
}

func (s Store) SaveSyncState(st SyncState) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return os.WriteFile(s.syncStatePath(), b, 0o644)
}
