// Package ledger provides the append-only journal of published events
// and debt payments, backed by SQLite.
package ledger

import (
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"github.com/user/guildmaster/internal/types"
)

// DB wraps a SQLite connection for the guild ledger
type DB struct {
	conn *sqlx.DB
}

// Entry is one journaled event row
type Entry struct {
	ID       int64  `db:"id" json:"id"`
	Day      int    `db:"day" json:"day"`
	Kind     string `db:"kind" json:"kind"`
	EntityID string `db:"entity_id" json:"entity_id"`
	Payload  string `db:"payload" json:"payload"`
}

// PaymentRow is one journaled debt payment
type PaymentRow struct {
	ID        int64  `db:"id" json:"id"`
	Day       int    `db:"day" json:"day"`
	DebtID    string `db:"debt_id" json:"debt_id"`
	Amount    int    `db:"amount" json:"amount"`
	Remaining int    `db:"remaining" json:"remaining"`
}

// Open opens or creates the ledger database at the given DSN
func Open(dsn string) (*DB, error) {
	conn, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		kind TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS payments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		day INTEGER NOT NULL,
		debt_id TEXT NOT NULL,
		amount INTEGER NOT NULL,
		remaining INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_day ON events(day);
	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(kind);
	CREATE INDEX IF NOT EXISTS idx_payments_day ON payments(day);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RecordEvent appends one published event to the journal. Debt payments
// additionally land in the payments table.
func (db *DB) RecordEvent(day int, event types.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	_, err = db.conn.Exec(
		"INSERT INTO events (day, kind, entity_id, payload) VALUES (?, ?, ?, ?)",
		day, string(event.Kind()), event.EntityID(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if payment, ok := event.(types.DebtPayment); ok {
		_, err = db.conn.Exec(
			"INSERT INTO payments (day, debt_id, amount, remaining) VALUES (?, ?, ?, ?)",
			payment.Day, payment.DebtID, payment.Amount, payment.RemainingBalance,
		)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
	}

	return nil
}

// RecentEvents returns the most recent N journal entries
func (db *DB) RecentEvents(limit int) ([]Entry, error) {
	var entries []Entry
	err := db.conn.Select(&entries,
		"SELECT id, day, kind, entity_id, payload FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return entries, err
}

// EventsByKind returns the journal entries of one kind, oldest first
func (db *DB) EventsByKind(kind types.EventKind) ([]Entry, error) {
	var entries []Entry
	err := db.conn.Select(&entries,
		"SELECT id, day, kind, entity_id, payload FROM events WHERE kind = ? ORDER BY id",
		string(kind),
	)
	return entries, err
}

// Payments returns the full payment journal, oldest first
func (db *DB) Payments() ([]PaymentRow, error) {
	var rows []PaymentRow
	err := db.conn.Select(&rows,
		"SELECT id, day, debt_id, amount, remaining FROM payments ORDER BY id",
	)
	return rows, err
}
