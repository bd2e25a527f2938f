// Package store owns durable local state: the versioned items envelope with
// its backup slot, the deprecated legacy key consumed once for migration, the
// per-store config file, the undo stack file, the sync watermark, and the
// sqlite event log.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/validate"
)

const (
	dbFileName     = "items.json"
	backupFileName = "items.json.bak"
	legacyFileName = "todos-legacy.json"
	undoFileName   = "undo.json"
	syncFileName   = "sync.json"

	SchemaVersion = 1
)

// Envelope is the versioned wrapper persisted to the primary and backup slots.
type Envelope struct {
	Version int               `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

type Store struct {
	Dir string
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) dbPath() string     { return filepath.Join(s.Dir, dbFileName) }
func (s Store) backupPath() string { return filepath.Join(s.Dir, backupFileName) }
func (s Store) legacyPath() string { return filepath.Join(s.Dir, legacyFileName) }

// LoadResult carries the recovered collection plus which recovery tier
// produced it, so callers can surface the one-line notice.
type LoadResult struct {
	Items []model.Item

	// Notice is a human-facing recovery message, empty on a clean load.
	Notice string

	RecoveredFromBackup bool
	Migrated            bool
	Corrupt             bool
}

// Load reads the collection: primary envelope, then backup, then legacy
// migration, then empty. Every tier re-validates each item; stored data is
// never trusted blindly.
func (s Store) Load(now int64, today string) (LoadResult, error) {
	if err := s.Ensure(); err != nil {
		return LoadResult{}, err
	}

	primaryExists := fileExists(s.dbPath())
	backupExists := fileExists(s.backupPath())

	if items, ok := s.readEnvelope(s.dbPath(), now, today); ok {
		return LoadResult{Items: items}, nil
	}

	if items, ok := s.readEnvelope(s.backupPath(), now, today); ok {
		return LoadResult{
			Items:               items,
			Notice:              "Recovered from backup",
			RecoveredFromBackup: true,
		}, nil
	}

	if items, ok := s.migrateLegacy(now, today); ok {
		return LoadResult{
			Items:    items,
			Notice:   "Migrated your tasks to the new format",
			Migrated: true,
		}, nil
	}

	res := LoadResult{}
	if primaryExists || backupExists {
		res.Notice = "Data was corrupted — starting fresh"
		res.Corrupt = true
	}
	return res, nil
}

// readEnvelope parses one slot; any parse or shape failure means the slot is
// unusable and the caller falls through to the next tier.
func (s Store) readEnvelope(path string, now int64, today string) ([]model.Item, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var probe struct {
		Version *float64 `json:"version"`
		Items   *[]any   `json:"items"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	if probe.Version == nil || probe.Items == nil {
		return nil, false
	}
	return validate.Items(*probe.Items, now, today), true
}

// migrateLegacy consumes the deprecated flat-array key once, deleting it on
// success.
func (s Store) migrateLegacy(now int64, today string) ([]model.Item, bool) {
	raw, err := os.ReadFile(s.legacyPath())
	if err != nil {
		return nil, false
	}
	var records []any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false
	}
	if len(records) == 0 {
		return nil, false
	}
	items := validate.MigrateLegacy(records, now, today)
	_ = os.Remove(s.legacyPath())
	return items, true
}

// Save purges stale done items, rotates the previous primary envelope into the
// backup slot, then writes the new envelope. The returned slice is the
// post-purge collection; a write failure is non-fatal to the session (the
// in-memory state stays authoritative) and surfaces as the returned error.
func (s Store) Save(items []model.Item, now int64) ([]model.Item, error) {
	if err := s.Ensure(); err != nil {
		return items, err
	}

	items = Purge(items, now)

	raws := make([]json.RawMessage, 0, len(items))
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return items, err
		}
		raws = append(raws, b)
	}
	envelope, err := json.Marshal(Envelope{Version: SchemaVersion, Items: raws})
	if err != nil {
		return items, err
	}

	if previous, err := os.ReadFile(s.dbPath()); err == nil {
		// Backup write failures are skipped, matching the primary-first
		// persistence policy.
		_ = os.WriteFile(s.backupPath(), previous, 0o644)
	}

	if err := os.WriteFile(s.dbPath(), envelope, 0o644); err != nil {
		return items, err
	}
	return items, nil
}

// Purge drops done items whose updatedAt is older than the retention window.
func Purge(items []model.Item, now int64) []model.Item {
	cutoff := int64(model.PurgeDays) * model.DayMillis
	kept := make([]model.Item, 0, len(items))
	for _, it := range items {
		if it.Status == model.StatusDone && it.IsTask() && now-it.UpdatedAt > cutoff {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// SerializeItems renders the collection exactly as the envelope payload;
// undo snapshots and remote documents reuse this form.
func SerializeItems(items []model.Item) ([]byte, error) {
	if items == nil {
		items = []model.Item{}
	}
	return json.Marshal(items)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

