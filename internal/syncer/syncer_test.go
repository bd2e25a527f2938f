package syncer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/snackdriven/tender-circuit/internal/remote"
)

// fakeBackend is an in-memory document store with swappable auth.
type fakeBackend struct {
	mu          sync.Mutex
	doc         *remote.Document
	validToken  string
	refreshes   int
	upserts     int
	nextAccess  string
	nextRefresh string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/store/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if r.Header.Get("Authorization") != "Bearer "+b.validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.Method {
		case http.MethodGet:
			if b.doc == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(b.doc)
		case http.MethodPut:
			var doc remote.Document
			_ = json.NewDecoder(r.Body).Decode(&doc)
			b.doc = &doc
			b.upserts++
			w.WriteHeader(http.StatusNoContent)
		}
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.refreshes++
		if b.nextAccess == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		b.validToken = b.nextAccess
		_ = json.NewEncoder(w).Encode(remote.Tokens{AccessToken: b.nextAccess, RefreshToken: b.nextRefresh})
	})
	return mux
}

type harness struct {
	backend *fakeBackend
	srv     *httptest.Server
	mgr     *Manager

	mu        sync.Mutex
	snapshot  []json.RawMessage
	snapTime  int64
	applied   *remote.Document
	tokens    []remote.Tokens
	watermark []int64
}

func newHarness(t *testing.T, debounce time.Duration) *harness {
	t.Helper()
	h := &harness{
		backend:  &fakeBackend{validToken: "tok"},
		snapshot: []json.RawMessage{json.RawMessage(`{"id":"a"}`)},
		snapTime: 1000,
	}
	h.srv = httptest.NewServer(h.backend.handler())
	t.Cleanup(h.srv.Close)

	client := &remote.Client{BaseURL: h.srv.URL, AccessToken: "tok", RefreshToken: "rt"}
	h.mgr = New(client, "u1", 0, debounce, Hooks{
		Snapshot: func() ([]json.RawMessage, int64) {
			h.mu.Lock()
			defer h.mu.Unlock()
			return h.snapshot, h.snapTime
		},
		Apply: func(doc remote.Document) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.applied = &doc
			return nil
		},
		SaveTokens: func(tk remote.Tokens) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.tokens = append(h.tokens, tk)
		},
		SaveWatermark: func(w int64) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.watermark = append(h.watermark, w)
		},
	})
	return h
}

func TestPushNow(t *testing.T) {
	h := newHarness(t, time.Hour)

	if err := h.mgr.PushNow(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	state, _ := h.mgr.Status()
	if state != StateSynced {
		t.Fatalf("state = %q", state)
	}
	if h.mgr.LastSyncedAt() != 1000 {
		t.Fatalf("watermark = %d", h.mgr.LastSyncedAt())
	}
	if h.backend.doc == nil || h.backend.doc.UpdatedAt != 1000 {
		t.Fatalf("backend doc = %+v", h.backend.doc)
	}
	if len(h.watermark) != 1 || h.watermark[0] != 1000 {
		t.Fatalf("persisted watermarks = %v", h.watermark)
	}
}

func TestDebounceCollapsesPushes(t *testing.T) {
	h := newHarness(t, 30*time.Millisecond)

	h.mgr.SchedulePush()
	h.mgr.SchedulePush()
	h.mgr.SchedulePush()

	state, _ := h.mgr.Status()
	if state != StatePending {
		t.Fatalf("state = %q", state)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		state, _ := h.mgr.Status()
		if state == StateSynced {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("push never fired, state = %q", state)
		}
		time.Sleep(5 * time.Millisecond)
	}

	h.backend.mu.Lock()
	upserts := h.backend.upserts
	h.backend.mu.Unlock()
	if upserts != 1 {
		t.Fatalf("upserts = %d, want 1", upserts)
	}
}

func TestFlushRunsPendingPush(t *testing.T) {
	h := newHarness(t, time.Hour)

	h.mgr.SchedulePush()
	if err := h.mgr.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	h.backend.mu.Lock()
	upserts := h.backend.upserts
	h.backend.mu.Unlock()
	if upserts != 1 {
		t.Fatalf("upserts = %d", upserts)
	}

	// Nothing pending; flush is a no-op.
	if err := h.mgr.Flush(context.Background()); err != nil {
		t.Fatalf("idle flush: %v", err)
	}
	h.backend.mu.Lock()
	upserts = h.backend.upserts
	h.backend.mu.Unlock()
	if upserts != 1 {
		t.Fatalf("idle flush pushed again: %d", upserts)
	}
}

func TestPushRefreshesOnceOn401(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.validToken = "rotated" // current access token is now stale
	h.backend.nextAccess = "rotated"
	h.backend.nextRefresh = "rt-2"

	if err := h.mgr.PushNow(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	if h.backend.refreshes != 1 {
		t.Fatalf("refreshes = %d", h.backend.refreshes)
	}
	if len(h.tokens) != 1 || h.tokens[0].AccessToken != "rotated" {
		t.Fatalf("tokens = %+v", h.tokens)
	}
	state, _ := h.mgr.Status()
	if state != StateSynced {
		t.Fatalf("state = %q", state)
	}
}

func TestConcurrentPushesShareOneRefresh(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.validToken = "rotated" // current access token is now stale
	h.backend.nextAccess = "rotated"
	h.backend.nextRefresh = "rt-2"

	// Network operations serialize, so the second push reuses the credentials
	// the first one refreshed instead of racing the rewrite.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := h.mgr.PushNow(context.Background()); err != nil {
				t.Errorf("push: %v", err)
			}
		}()
	}
	wg.Wait()

	h.backend.mu.Lock()
	refreshes, upserts := h.backend.refreshes, h.backend.upserts
	h.backend.mu.Unlock()
	if refreshes != 1 {
		t.Fatalf("refreshes = %d, want 1", refreshes)
	}
	if upserts != 2 {
		t.Fatalf("upserts = %d, want 2", upserts)
	}
	state, _ := h.mgr.Status()
	if state != StateSynced {
		t.Fatalf("state = %q", state)
	}
}

func TestPushFailsWhenRefreshRejected(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.validToken = "rotated"
	h.backend.nextAccess = "" // refresh endpoint rejects

	if err := h.mgr.PushNow(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	state, lastErr := h.mgr.Status()
	if state != StateError || lastErr == "" {
		t.Fatalf("state = %q, err = %q", state, lastErr)
	}
	if h.backend.refreshes != 1 {
		t.Fatalf("refreshes = %d, want exactly one attempt", h.backend.refreshes)
	}
}

func TestPullAppliesNewerDocument(t *testing.T) {
	h := newHarness(t, time.Hour)
	h.backend.doc = &remote.Document{
		Items:     []json.RawMessage{json.RawMessage(`{"id":"remote"}`)},
		UpdatedAt: 500,
	}

	applied, err := h.mgr.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if !applied || h.applied == nil || h.applied.UpdatedAt != 500 {
		t.Fatalf("applied = %v, doc = %+v", applied, h.applied)
	}
	if h.mgr.LastSyncedAt() != 500 {
		t.Fatalf("watermark = %d", h.mgr.LastSyncedAt())
	}
}

func TestPullDiscardsStaleDocument(t *testing.T) {
	h := newHarness(t, time.Hour)

	// Establish a watermark, then serve an older document.
	if err := h.mgr.PushNow(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	h.backend.mu.Lock()
	h.backend.doc = &remote.Document{UpdatedAt: 999}
	h.backend.mu.Unlock()

	applied, err := h.mgr.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if applied || h.applied != nil {
		t.Fatalf("stale document must be discarded")
	}
	if h.mgr.LastSyncedAt() != 1000 {
		t.Fatalf("watermark regressed: %d", h.mgr.LastSyncedAt())
	}
}

func TestPullMissingRemote(t *testing.T) {
	h := newHarness(t, time.Hour)
	applied, err := h.mgr.Pull(context.Background())
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if applied {
		t.Fatalf("nothing to apply")
	}
	state, _ := h.mgr.Status()
	if state != StateSynced {
		t.Fatalf("state = %q", state)
	}
}

func TestLocalOnlyModeIsNoOp(t *testing.T) {
	m := New(nil, "", 0, time.Second, Hooks{})
	if m.Enabled() {
		t.Fatalf("nil client should disable sync")
	}
	m.SchedulePush()
	if err := m.PushNow(context.Background()); err != nil {
		t.Fatalf("push: %v", err)
	}
	if applied, err := m.Pull(context.Background()); err != nil || applied {
		t.Fatalf("pull: %v, %v", applied, err)
	}
	if err := m.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
	state, _ := m.Status()
	if state != StateIdle {
		t.Fatalf("state = %q", state)
	}
}
