// Package session owns a live collection: it loads the store, guards every
// mutation with a snapshot for undo, persists after each change and feeds the
// sync manager.
package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/snackdriven/tender-circuit/internal/dateutil"
	"github.com/snackdriven/tender-circuit/internal/model"
	"github.com/snackdriven/tender-circuit/internal/mutate"
	"github.com/snackdriven/tender-circuit/internal/remote"
	"github.com/snackdriven/tender-circuit/internal/store"
	"github.com/snackdriven/tender-circuit/internal/syncer"
	"github.com/snackdriven/tender-circuit/internal/undo"
	"github.com/snackdriven/tender-circuit/internal/validate"
	"github.com/snackdriven/tender-circuit/internal/views"
)

// Op is a single mutation against the collection. It runs under the session
// lock; the slice pointer lets creates and deletes replace the backing array.
type Op func(items *[]model.Item, now int64, today string) (mutate.Result, error)

type Session struct {
	st   store.Store
	cfg  store.Config
	sync *syncer.Manager

	// nowFn is injectable for tests and for replaying at a fixed clock.
	nowFn func() time.Time

	mu      sync.Mutex
	items   []model.Item
	undo    *undo.Stack
	notices []string
}

// Open loads the directory's collection through the tiered recovery path,
// repairs dangling references, restores the undo stack and wires the sync
// manager (or its local-only stand-in). A nil nowFn means the wall clock.
func Open(dir string, nowFn func() time.Time) (*Session, error) {
	if nowFn == nil {
		nowFn = time.Now
	}
	st := store.Store{Dir: dir}
	if err := st.Ensure(); err != nil {
		return nil, err
	}
	cfg, err := st.LoadConfig()
	if err != nil {
		return nil, err
	}

	s := &Session{
		st:    st,
		cfg:   cfg,
		nowFn: nowFn,
	}

	now := s.now()
	today := s.today()
	res, err := st.Load(now, today)
	if err != nil {
		return nil, err
	}
	s.items = res.Items
	if res.Notice != "" {
		s.notices = append(s.notices, res.Notice)
	}
	cleaned := validate.CleanOrphanDependencies(s.items)
	if res.Migrated || res.RecoveredFromBackup || cleaned {
		// Write the repaired collection back so the next load is clean.
		if saved, err := st.Save(s.items, now); err == nil {
			s.items = saved
		}
	}
	s.undo = st.LoadUndo()

	var client *remote.Client
	if cfg.Sync.Enabled() {
		client = &remote.Client{
			BaseURL:      cfg.Sync.BaseURL,
			AccessToken:  cfg.Sync.AccessToken,
			RefreshToken: cfg.Sync.RefreshToken,
		}
	}
	debounce := time.Duration(cfg.DebounceMillis) * time.Millisecond
	s.sync = syncer.New(client, cfg.Sync.UserID, st.LoadSyncState().LastSyncedAt, debounce, syncer.Hooks{
		Snapshot:      s.syncSnapshot,
		Apply:         s.syncApply,
		SaveTokens:    s.saveTokens,
		SaveWatermark: s.saveWatermark,
	})
	return s, nil
}

func (s *Session) now() int64    { return s.nowFn().UnixMilli() }
func (s *Session) today() string { return dateutil.Format(s.nowFn()) }

func (s *Session) Store() store.Store    { return s.st }
func (s *Session) Config() store.Config  { return s.cfg }
func (s *Session) Sync() *syncer.Manager { return s.sync }
func (s *Session) Today() string         { return s.today() }
func (s *Session) Now() int64            { return s.now() }

// Notices drains the accumulated recovery messages.
func (s *Session) Notices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// Items returns a deep copy of the collection.
func (s *Session) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Item, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out
}

// Item returns a copy of one item.
func (s *Session) Item(id string) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if it := model.FindItem(s.items, id); it != nil {
		return it.Clone(), true
	}
	return model.Item{}, false
}

// UndoDepth reports how many snapshots are available.
func (s *Session) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.undo.Len()
}

// Mutate snapshots the collection, runs the operation, and on a real change
// pushes the snapshot, persists, logs an audit event and schedules a push.
// Operations that report Changed=false leave the undo stack untouched.
func (s *Session) Mutate(ctx context.Context, label string, op Op) (mutate.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, err := store.SerializeItems(s.items)
	if err != nil {
		return mutate.Result{}, err
	}

	now := s.now()
	res, err := op(&s.items, now, s.today())
	if err != nil {
		return res, err
	}
	if !res.Changed {
		return res, nil
	}

	s.undo.Push(label, snapshot)
	if err := s.st.SaveUndo(s.undo); err != nil {
		s.notices = append(s.notices, "undo history not saved: "+err.Error())
	}

	saved, err := s.st.Save(s.items, now)
	if err != nil {
		return res, err
	}
	s.items = saved

	s.logEvent(ctx, now, label, res)
	s.sync.SchedulePush()
	return res, nil
}

// Undo restores the most recent snapshot. Returns false when the stack is
// empty.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.undo.Pop()
	if !ok {
		return false, nil
	}

	now := s.now()
	items, err := decodeItems(entry.Snapshot, now, s.today())
	if err != nil {
		// A snapshot we wrote ourselves should always decode; drop it rather
		// than wedging the stack.
		_ = s.st.SaveUndo(s.undo)
		return false, err
	}
	s.items = items

	if err := s.st.SaveUndo(s.undo); err != nil {
		s.notices = append(s.notices, "undo history not saved: "+err.Error())
	}
	saved, err := s.st.Save(s.items, now)
	if err != nil {
		return true, err
	}
	s.items = saved

	s.logEvent(ctx, now, "undo "+entry.Label, mutate.Result{})
	s.sync.SchedulePush()
	return true, nil
}

// View runs a named view query, filling defaults from the config: the
// active-window horizon and the per-view sort orders.
func (s *Session) View(name string, p views.Params) []model.Item {
	if p.Today == "" {
		p.Today = s.today()
	}
	if p.HorizonDays == 0 {
		p.HorizonDays = s.cfg.HorizonDays
	}
	if p.Sort == "" {
		switch name {
		case "browse":
			p.Sort = s.cfg.BrowseSort
		case "all":
			p.Sort = s.cfg.AllSort
		}
	}
	return views.Items(s.Items(), name, p)
}

// Week builds the seven-day strip around the selected date.
func (s *Session) Week(selected string) []views.WeekDay {
	today := s.today()
	if selected == "" {
		selected = today
	}
	return views.Week(s.Items(), selected, selected, today)
}

// Close flushes any pending push. Mutations have already been persisted.
func (s *Session) Close(ctx context.Context) error {
	return s.sync.Flush(ctx)
}

func (s *Session) logEvent(ctx context.Context, ts int64, typ string, res mutate.Result) {
	if !s.cfg.EventLog {
		return
	}
	entityID := ""
	if res.Item != nil {
		entityID = res.Item.ID
	}
	payload := map[string]any{}
	if res.Item != nil {
		payload["title"] = res.Item.Title
	}
	if res.Spawned != nil {
		payload["spawned"] = res.Spawned.ID
	}
	// Audit only; a missing or locked db never blocks the mutation.
	_ = s.st.AppendEvent(ctx, ts, typ, entityID, payload)
}

// syncSnapshot serializes the collection item by item for the remote document.
func (s *Session) syncSnapshot() ([]json.RawMessage, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raws := make([]json.RawMessage, 0, len(s.items))
	for _, it := range s.items {
		b, err := json.Marshal(it)
		if err != nil {
			continue
		}
		raws = append(raws, json.RawMessage(b))
	}
	return raws, s.now()
}

// syncApply installs a strictly-newer remote document: every item goes back
// through validation, then the result is persisted without scheduling a push.
func (s *Session) syncApply(doc remote.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(doc.Items)
	if err != nil {
		return err
	}
	now := s.now()
	items, err := decodeItems(raw, now, s.today())
	if err != nil {
		return err
	}
	s.items = items

	saved, err := s.st.Save(s.items, now)
	if err != nil {
		return err
	}
	s.items = saved
	return nil
}

func (s *Session) saveTokens(tokens remote.Tokens) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.Sync.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		s.cfg.Sync.RefreshToken = tokens.RefreshToken
	}
	_ = s.st.SaveConfig(s.cfg)
}

func (s *Session) saveWatermark(lastSyncedAt int64) {
	_ = s.st.SaveSyncState(store.SyncState{LastSyncedAt: lastSyncedAt})
}

// decodeItems re-validates a serialized item array, dropping anything that no
// longer passes. Dangling references left by the drop are cleaned too.
func decodeItems(raw []byte, now int64, today string) ([]model.Item, error) {
	var anys []any
	if err := json.Unmarshal(raw, &anys); err != nil {
		return nil, err
	}
	items := validate.Items(anys, now, today)
	validate.CleanOrphanDependencies(items)
	return items, nil
}
