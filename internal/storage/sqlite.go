// Package storage archives completed report runs in SQLite.
// The archive is write-only from the pipeline's side: nothing read back from
// it feeds into a later report.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"logreport/internal/record"
)

// timeLayout is fixed-width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Run is one archived report run.
type Run struct {
	ID          string
	Input       string
	Output      string
	DateStyle   string
	Records     int
	UniqueUsers int
	CreatedAt   time.Time
}

// DB wraps a SQLite database connection for run archival.
type DB struct {
	db *sql.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database tables and indices.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		date_style TEXT NOT NULL,
		records INTEGER NOT NULL,
		unique_users INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		bytes_tx TEXT NOT NULL,
		bytes_rx TEXT NOT NULL,
		datetime TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	CREATE INDEX IF NOT EXISTS idx_records_user ON records(user_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveParams contains the parameters for archiving a run.
type SaveParams struct {
	Input     string
	Output    string
	DateStyle string
	Records   []record.Record
	CreatedAt time.Time // Defaults to now.
}

// SaveRun stores a run and its records in one transaction and returns the run.
func (d *DB) SaveRun(ctx context.Context, p SaveParams) (*Run, error) {
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	users := make(map[string]struct{}, len(p.Records))
	for _, r := range p.Records {
		users[r.UserID] = struct{}{}
	}

	run := &Run{
		ID:          uuid.NewString(),
		Input:       p.Input,
		Output:      p.Output,
		DateStyle:   p.DateStyle,
		Records:     len(p.Records),
		UniqueUsers: len(users),
		CreatedAt:   created.UTC(),
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, input, output, date_style, records, unique_users, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Input, run.Output, run.DateStyle, run.Records, run.UniqueUsers, run.CreatedAt.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (run_id, seq, id, user_id, bytes_tx, bytes_rx, datetime)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return nil, fmt.Errorf("prepare record insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range p.Records {
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.ID, r.UserID, r.BytesTx, r.BytesRx, r.DateTime); err != nil {
			return nil, fmt.Errorf("insert record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// ListRuns returns archived runs, newest first. Limit <= 0 means 100.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT id, input, output, date_style, records, unique_users, created_at
		FROM runs
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Input, &r.Output, &r.DateStyle, &r.Records, &r.UniqueUsers, &created); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		r.CreatedAt, _ = time.Parse(timeLayout, created)
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// RunRecords returns the records of a run in arrival order.
func (d *DB) RunRecords(ctx context.Context, runID string) ([]record.Record, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, user_id, bytes_tx, bytes_rx, datetime
		FROM records
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []record.Record
	for rows.Next() {
		var r record.Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.BytesTx, &r.BytesRx, &r.DateTime); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// CountByUser returns how many archived records each user id has across all runs.
func (d *DB) CountByUser(ctx context.Context) (map[string]int, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT user_id, COUNT(*) FROM records GROUP BY user_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	counts := make(map[string]int)
	for rows.Next() {
		var user string
		var count int
		if err := rows.Scan(&user, &count); err != nil {
			return nil, err
		}
		counts[user] = count
	}
	return counts, rows.Err()
}
