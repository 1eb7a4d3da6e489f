// Package eventlog is an optional SQLite sink for the engine's event stream
// (§6). It is write-only and exists purely to hand the external analysis
// collaborator (§1, out of scope) a queryable transcript instead of only an
// in-process channel — it never persists protocol *state* (peer table, seen
// set, message store) and the engine never reads it back, so it does not
// violate the "no persistence across restarts" non-goal.
package eventlog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/gossipmesh/gossipd/internal/domain"
)

// ─── Schema ─────────────────────────────────────────────────────────────────

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp_ms        INTEGER NOT NULL,
	direction           TEXT    NOT NULL,
	msg_type            TEXT    NOT NULL,
	msg_id              TEXT    NOT NULL,
	peer_addr           TEXT    NOT NULL,
	origin_id           TEXT,
	origin_timestamp_ms INTEGER,
	reason              TEXT
)`

const createIndex = `CREATE INDEX IF NOT EXISTS idx_events_msg_id ON events(msg_id)`

// Sink writes engine events to a local SQLite database.
type Sink struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite file at path and ensures the schema
// exists.
func Open(path string) (*Sink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event log %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate event log: %w", err)
	}
	if _, err := db.Exec(createIndex); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate event log: %w", err)
	}
	return &Sink{db: db}, nil
}

// Record appends one event. Errors are returned for the caller to log —
// a failed write to the event log must never affect protocol behavior.
func (s *Sink) Record(ev domain.Event) error {
	_, err := s.db.Exec(`
		INSERT INTO events (timestamp_ms, direction, msg_type, msg_id, peer_addr, origin_id, origin_timestamp_ms, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.TimestampMs, string(ev.Direction), ev.MsgType, ev.MsgID, ev.PeerAddr, ev.OriginID, ev.OriginTimestampMs, ev.Reason)
	if err != nil {
		return fmt.Errorf("record event: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Sink) Close() error {
	return s.db.Close()
}
