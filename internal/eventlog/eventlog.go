// Package eventlog records tracker lifecycle events (runtime init outcome,
// binding transitions, recenter requests) in sqlite. Pose samples are never
// written here; the log captures what happened to the session and binding,
// not where the device was.
package eventlog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Event kinds.
const (
	KindInit     = "init"
	KindBind     = "bind"
	KindBindFail = "bind_failed"
	KindRecenter = "recenter"
	KindShutdown = "shutdown"
)

type DB struct {
	*sql.DB
	path string
}

// NewDB opens (creating if needed) the event log at path. The baseline
// schema is applied inline; later revisions ship as migrations.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			event_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			kind          TEXT NOT NULL,
			detail        TEXT,
			device        TEXT,
			slot          INTEGER,
			timestamp     TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return nil, err
	}

	return &DB{DB: db, path: path}, nil
}

// Record inserts a lifecycle event with no device association.
func (db *DB) Record(kind, detail string) error {
	_, err := db.Exec("INSERT INTO events (kind, detail, slot) VALUES (?, ?, -1)", kind, detail)
	return err
}

// RecordDevice inserts a lifecycle event tied to a device identity and slot.
func (db *DB) RecordDevice(kind, detail, device string, slot int) error {
	_, err := db.Exec("INSERT INTO events (kind, detail, device, slot) VALUES (?, ?, ?, ?)",
		kind, detail, device, slot)
	return err
}

// Event is one row of the lifecycle log.
type Event struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	Device    string    `json:"device,omitempty"`
	Slot      int       `json:"slot"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *Event) String() string {
	if e.Device != "" {
		return fmt.Sprintf("%s %s: %s (%s slot %d)",
			e.Timestamp.Format(time.RFC3339), e.Kind, e.Detail, e.Device, e.Slot)
	}
	return fmt.Sprintf("%s %s: %s", e.Timestamp.Format(time.RFC3339), e.Kind, e.Detail)
}

// Events returns the most recent events, newest first.
func (db *DB) Events(limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 500
	}
	rows, err := db.Query(`
		SELECT event_id, kind, COALESCE(detail, ''), COALESCE(device, ''), slot, timestamp
		FROM events ORDER BY event_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Kind, &e.Detail, &e.Device, &e.Slot, &e.Timestamp); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
