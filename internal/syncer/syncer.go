// Package syncer reconciles the local collection with the remote document
// store under last-write-wins: pushes serialize the whole collection with a
// fresh timestamp, pulls replace local state only when strictly newer than the
// recorded watermark. Sync is best-effort; failures land in the observable
// state, never in the caller's way.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/snackdriven/tender-circuit/internal/remote"
)

// State is the sync status surfaced to the presentation layer.
type State string

const (
	StateIdle    State = "idle"
	StatePending State = "pending"
	StateSyncing State = "syncing"
	StateSynced  State = "synced"
	StateError   State = "error"
)

// Hooks are the session callbacks the manager drives. Snapshot must serialize
// the collection as of the moment it is called, so an in-flight push never
// carries a stale copy.
type Hooks struct {
	// Snapshot returns the serialized items and the timestamp to stamp the
	// pushed document with.
	Snapshot func() ([]json.RawMessage, int64)

	// Apply installs a strictly-newer pulled document: re-validate every item,
	// re-run orphan cleanup, persist without re-triggering a push.
	Apply func(doc remote.Document) error

	// SaveTokens persists refreshed credentials.
	SaveTokens func(tokens remote.Tokens)

	// SaveWatermark persists the lastSyncedAt monotonic watermark.
	SaveWatermark func(lastSyncedAt int64)
}

type Manager struct {
	mu sync.Mutex

	// netMu serializes pushes and pulls. A token refresh rewrites the client's
	// credentials mid-call, so two network operations must never overlap.
	netMu sync.Mutex

	client       *remote.Client
	userID       string
	debounce     time.Duration
	timer        *time.Timer
	pending      bool
	state        State
	lastErr      string
	lastSyncedAt int64
	hooks        Hooks
}

// New builds a manager. A nil client means local-only mode: every operation is
// a cheap no-op and the state stays idle.
func New(client *remote.Client, userID string, lastSyncedAt int64, debounce time.Duration, hooks Hooks) *Manager {
	return &Manager{
		client:       client,
		userID:       userID,
		debounce:     debounce,
		state:        StateIdle,
		lastSyncedAt: lastSyncedAt,
		hooks:        hooks,
	}
}

func (m *Manager) Enabled() bool { return m != nil && m.client != nil }

// Status returns the current state and, for StateError, the last failure.
func (m *Manager) Status() (State, string) {
	if !m.Enabled() {
		return StateIdle, ""
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.lastErr
}

func (m *Manager) LastSyncedAt() int64 {
	if !m.Enabled() {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSyncedAt
}

// SchedulePush arms (or re-arms) the debounce timer; repeated mutations within
// the quiet window collapse into a single push after the last one.
func (m *Manager) SchedulePush() {
	if !m.Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = true
	m.state = StatePending
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.debounce, func() {
		_ = m.PushNow(context.Background())
	})
}

// Flush cancels any armed timer and, if a push is pending, runs it now.
// Callers use it at session close so a debounced push is not lost with the
// process.
func (m *Manager) Flush(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	pending := m.pending
	m.mu.Unlock()
	if !pending {
		return nil
	}
	return m.PushNow(ctx)
}

// PushNow serializes the collection as of now and upserts it. An unauthorized
// response triggers exactly one token refresh and one retry; any further
// failure surfaces as StateError while local storage stays authoritative.
func (m *Manager) PushNow(ctx context.Context) error {
	if !m.Enabled() {
		return nil
	}
	m.netMu.Lock()
	defer m.netMu.Unlock()

	m.mu.Lock()
	m.pending = false
	m.state = StateSyncing
	m.mu.Unlock()

	items, now := m.hooks.Snapshot()
	doc := remote.Document{Items: items, UpdatedAt: now}

	err := m.client.Upsert(ctx, m.userID, doc)
	if errors.Is(err, remote.ErrUnauthorized) {
		err = m.refreshAndRetry(ctx, func() error {
			return m.client.Upsert(ctx, m.userID, doc)
		})
	}
	if err != nil {
		m.fail(err)
		return err
	}

	m.mu.Lock()
	m.state = StateSynced
	m.lastErr = ""
	m.lastSyncedAt = now
	m.mu.Unlock()
	if m.hooks.SaveWatermark != nil {
		m.hooks.SaveWatermark(now)
	}
	return nil
}

// Pull fetches the remote copy and applies it only when strictly newer than
// the watermark — remote can never regress local state. Returns whether the
// local collection was replaced.
func (m *Manager) Pull(ctx context.Context) (bool, error) {
	if !m.Enabled() {
		return false, nil
	}
	m.netMu.Lock()
	defer m.netMu.Unlock()

	m.mu.Lock()
	m.state = StateSyncing
	m.mu.Unlock()

	doc, err := m.client.Fetch(ctx, m.userID)
	if errors.Is(err, remote.ErrUnauthorized) {
		err = m.refreshAndRetry(ctx, func() error {
			doc, err = m.client.Fetch(ctx, m.userID)
			return err
		})
	}
	if err != nil {
		m.fail(err)
		return false, err
	}

	if doc == nil || doc.UpdatedAt <= m.LastSyncedAt() {
		m.mu.Lock()
		m.state = StateSynced
		m.lastErr = ""
		m.mu.Unlock()
		return false, nil
	}

	if err := m.hooks.Apply(*doc); err != nil {
		m.fail(err)
		return false, err
	}

	m.mu.Lock()
	m.state = StateSynced
	m.lastErr = ""
	m.lastSyncedAt = doc.UpdatedAt
	m.mu.Unlock()
	if m.hooks.SaveWatermark != nil {
		m.hooks.SaveWatermark(doc.UpdatedAt)
	}
	return true, nil
}

// refreshAndRetry performs the single credential refresh, persists the new
// tokens, and re-runs op once.
func (m *Manager) refreshAndRetry(ctx context.Context, op func() error) error {
	tokens, err := m.client.Refresh(ctx)
	if err != nil {
		return err
	}
	if m.hooks.SaveTokens != nil {
		m.hooks.SaveTokens(tokens)
	}
	return op()
}

func (m *Manager) fail(err error) {
	m.mu.Lock()
	m.state = StateError
	m.lastErr = err.Error()
	m.mu.Unlock()
}
