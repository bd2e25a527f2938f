package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const eventDBName = "planner.db"

// Event is one row of the append-only audit log: every applied mutation,
// undo, and sync transition lands here.
type Event struct {
	ID       string          `json:"id"`
	TS       int64           `json:"ts"` // epoch millis
	Type     string          `json:"type"`
	EntityID string          `json:"entityId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func (s Store) eventDBPath() string { return filepath.Join(s.Dir, eventDBName) }

func (s Store) openEventDB(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.eventDBPath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout avoids "database is
	// locked" flakiness when a debounced push races a CLI invocation.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS events (
		event_id TEXT PRIMARY KEY,
		ts_unixms INTEGER NOT NULL,
		type TEXT NOT NULL,
		entity_id TEXT,
		payload_json TEXT
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts_unixms);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// AppendEvent records one audit row. Best-effort from the session's point of
// view; callers decide whether a failure matters.
func (s Store) AppendEvent(ctx context.Context, ts int64, typ, entityID string, payload any) error {
	db, err := s.openEventDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var payloadJSON string
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		payloadJSON = string(b)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO events (event_id, ts_unixms, type, entity_id, payload_json) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), ts, typ, entityID, payloadJSON)
	return err
}

// ReadEvents returns the newest events first. limit <= 0 means all.
func (s Store) ReadEvents(ctx context.Context, limit int) ([]Event, error) {
	db, err := s.openEventDB(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT event_id, ts_unixms, type, entity_id, payload_json
		FROM events ORDER BY ts_unixms DESC, event_id`
	var rows *sql.Rows
	if limit > 0 {
		rows, err = db.QueryContext(ctx, q+` LIMIT ?`, limit)
	} else {
		rows, err = db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev       Event
			entityID sql.NullString
			payload  sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ev.TS, &ev.Type, &entityID, &payload); err != nil {
			return nil, err
		}
		if entityID.Valid {
			ev.EntityID = entityID.String
		}
		if p := strings.TrimSpace(payload.String); payload.Valid && p != "" {
			ev.Payload = json.RawMessage(p)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
