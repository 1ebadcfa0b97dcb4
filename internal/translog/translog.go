// Package translog persists every phase transition to a local SQLite
// file so a session can be reviewed after the fact.
package translog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/opensquawk/opensquawk/internal/atc"
)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	from_phase  TEXT NOT NULL,
	to_phase    TEXT NOT NULL,
	kind        TEXT NOT NULL,
	trigger_kind TEXT NOT NULL,
	trigger_src TEXT NOT NULL,
	forced      INTEGER NOT NULL,
	at          TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transitions_session ON transitions(session_id, at);
`

type Store struct {
	db *sql.DB
}

// Open creates or opens the log database. WAL keeps the writer from
// blocking concurrent reads from the control surface.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open transition log: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply transition log schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes one transition row.
func (s *Store) Append(sessionID string, rec atc.TransitionRecord) error {
	_, err := s.db.Exec(
		`INSERT INTO transitions (session_id, from_phase, to_phase, kind, trigger_kind, trigger_src, forced, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, rec.From.String(), rec.To.String(), string(rec.Kind),
		string(rec.Trigger.Kind), rec.Trigger.Source, rec.Forced, rec.Time.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append transition: %w", err)
	}
	return nil
}

// Entry is one persisted transition, phases kept as display strings so
// rows outlive enum renumbering.
type Entry struct {
	SessionID string
	From      string
	To        string
	Kind      string
	Trigger   string
	Source    string
	Forced    bool
	Time      time.Time
}

// BySession returns the transitions of one session in time order.
func (s *Store) BySession(sessionID string) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT session_id, from_phase, to_phase, kind, trigger_kind, trigger_src, forced, at
		 FROM transitions WHERE session_id = ? ORDER BY at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.SessionID, &e.From, &e.To, &e.Kind, &e.Trigger, &e.Source, &e.Forced, &e.Time); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
