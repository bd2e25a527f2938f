package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/snackdriven/tender-circuit/internal/model"
)

const (
	testNow   = int64(1756339200000)
	testToday = "2026-08-28"
)

func testItems() []model.Item {
	return []model.Item{
		{
			ID: "t1", Type: model.TypeTask, Title: "task one",
			TimeState: model.TimeOpen, Status: model.StatusActive,
			CreatedAt: 100, UpdatedAt: 100,
		},
		{
			ID: "e1", Type: model.TypeEvent, Title: "event one",
			DateTime: "2026-09-01T10:00", CreatedAt: 200,
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	if _, err := s.Save(testItems(), testNow); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Notice != "" || res.Corrupt {
		t.Fatalf("clean load produced notice %q", res.Notice)
	}
	if len(res.Items) != 2 || res.Items[0].ID != "t1" || res.Items[1].ID != "e1" {
		t.Fatalf("items = %+v", res.Items)
	}
}

func TestLoadEmptyDir(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Items) != 0 || res.Notice != "" {
		t.Fatalf("fresh dir should load empty with no notice: %+v", res)
	}
}

func TestLoadRecoversFromBackup(t *testing.T) {
	s := Store{Dir: t.TempDir()}

	// Two saves so the backup slot holds the first generation.
	if _, err := s.Save(testItems(), testNow); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if _, err := s.Save(testItems(), testNow); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	if err := os.WriteFile(s.dbPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt primary: %v", err)
	}

	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.RecoveredFromBackup || res.Notice != "Recovered from backup" {
		t.Fatalf("expected backup recovery, got %+v", res)
	}
	if len(res.Items) != 2 {
		t.Fatalf("items = %+v", res.Items)
	}
}

func TestLoadCorruptBothSlots(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := os.WriteFile(s.dbPath(), []byte("garbage"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(s.backupPath(), []byte(`{"items": "wrong shape"}`), 0o644); err != nil {
		t.Fatalf("write backup: %v", err)
	}

	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Corrupt || res.Notice != "Data was corrupted — starting fresh" {
		t.Fatalf("expected corrupt result, got %+v", res)
	}
	if len(res.Items) != 0 {
		t.Fatalf("items = %+v", res.Items)
	}
}

func TestLoadRejectsEnvelopeWithoutVersion(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// Parses as JSON but lacks the envelope shape.
	if err := os.WriteFile(s.dbPath(), []byte(`{"items": []}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Corrupt {
		t.Fatalf("versionless envelope should count as corrupt: %+v", res)
	}
}

func TestLoadMigratesLegacy(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	legacy := `[{"text":"old todo","completed":false},{"text":"finished","completed":true}]`
	if err := os.WriteFile(s.legacyPath(), []byte(legacy), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}

	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Migrated || res.Notice != "Migrated your tasks to the new format" {
		t.Fatalf("expected migration, got %+v", res)
	}
	if len(res.Items) != 2 || res.Items[0].Title != "old todo" {
		t.Fatalf("items = %+v", res.Items)
	}
	if _, err := os.Stat(s.legacyPath()); !os.IsNotExist(err) {
		t.Fatalf("legacy file should be consumed")
	}
}

func TestLoadPrefersPrimaryOverLegacy(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if _, err := s.Save(testItems(), testNow); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := os.WriteFile(s.legacyPath(), []byte(`[{"text":"old"}]`), 0o644); err != nil {
		t.Fatalf("write legacy: %v", err)
	}
	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Migrated || len(res.Items) != 2 {
		t.Fatalf("primary must win: %+v", res)
	}
}

func TestSaveRotatesBackup(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	first := testItems()[:1]
	if _, err := s.Save(first, testNow); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if _, err := s.Save(testItems(), testNow); err != nil {
		t.Fatalf("save 2: %v", err)
	}

	raw, err := os.ReadFile(s.backupPath())
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("backup not an envelope: %v", err)
	}
	if env.Version != SchemaVersion || len(env.Items) != 1 {
		t.Fatalf("backup = %+v", env)
	}
}

func TestSavePurgesStaleDone(t *testing.T) {
	old := model.Item{
		ID: "old-done", Type: model.TypeTask, Title: "old",
		TimeState: model.TimeOpen, Status: model.StatusDone,
		UpdatedAt: testNow - int64(model.PurgeDays+1)*model.DayMillis,
	}
	fresh := model.Item{
		ID: "fresh-done", Type: model.TypeTask, Title: "fresh",
		TimeState: model.TimeOpen, Status: model.StatusDone,
		UpdatedAt: testNow - int64(model.PurgeDays-1)*model.DayMillis,
	}
	active := model.Item{
		ID: "active", Type: model.TypeTask, Title: "active",
		TimeState: model.TimeOpen, Status: model.StatusActive,
		UpdatedAt: 0,
	}

	s := Store{Dir: t.TempDir()}
	saved, err := s.Save([]model.Item{old, fresh, active}, testNow)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("saved = %+v", saved)
	}
	for _, it := range saved {
		if it.ID == "old-done" {
			t.Fatalf("stale done task survived the purge")
		}
	}
}

func TestLoadDropsInvalidItems(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	env := `{"version":1,"items":[{"type":"task","title":"good"},{"type":"task","title":""},{"type":"mystery","title":"x"}]}`
	if err := os.WriteFile(s.dbPath(), []byte(env), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := s.Load(testNow, testToday)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "good" {
		t.Fatalf("items = %+v", res.Items)
	}
	if res.Notice != "" {
		t.Fatalf("item-level repair is not a recovery tier: %q", res.Notice)
	}
}

func TestConfigLoadWritesDefault(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	cfg, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HorizonDays != model.ActiveWindowDays || cfg.BrowseSort != "label-priority" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "config.toml")); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	cfg.HorizonDays = 5
	cfg.Sync.BaseURL = "https://sync.example"
	cfg.Sync.UserID = "u1"
	if err := s.SaveConfig(cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	again, err := s.LoadConfig()
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if again.HorizonDays != 5 || !again.Sync.Enabled() {
		t.Fatalf("reloaded = %+v", again)
	}
}

func TestSyncStateRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got := s.LoadSyncState(); got.LastSyncedAt != 0 {
		t.Fatalf("fresh sync state = %+v", got)
	}
	if err := s.SaveSyncState(SyncState{LastSyncedAt: 42}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := s.LoadSyncState(); got.LastSyncedAt != 42 {
		t.Fatalf("reloaded = %+v", got)
	}
}

func TestUndoFileRoundTrip(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.Ensure(); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	stack := s.LoadUndo()
	if stack.Len() != 0 {
		t.Fatalf("fresh undo len = %d", stack.Len())
	}
	stack.Push("create task", []byte(`[]`))
	stack.Push("toggle", []byte(`[{"id":"t1"}]`))
	if err := s.SaveUndo(stack); err != nil {
		t.Fatalf("save undo: %v", err)
	}

	again := s.LoadUndo()
	if again.Len() != 2 {
		t.Fatalf("reloaded len = %d", again.Len())
	}
	e, ok := again.Pop()
	if !ok || e.Label != "toggle" {
		t.Fatalf("pop = %+v", e)
	}
}
