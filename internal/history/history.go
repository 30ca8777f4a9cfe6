// SPDX-License-Identifier: AGPL-3.0-only

// Package history keeps a local ledger of past runs in an embedded sqlite
// database, so "postharvest history" can list them and --resume can skip
// targets that already succeeded.
package history

import (
	"context"
	"database/sql"
	"embed"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

// Entry is one recorded run.
type Entry struct {
	RunID      string
	Label      string
	Backend    string
	Status     string
	Items      int
	RecordedAt time.Time
}

// Open opens (creating if needed) the ledger database and applies pending
// migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening history database")
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrating history database")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordJob appends one run to the ledger. The invocation id groups every
// job of one CLI invocation so --resume can find its siblings.
func (s *Store) RecordJob(ctx context.Context, invocationID, runID, label, backend, status string, items int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (invocation_id, run_id, label, backend, status, items, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		invocationID, runID, label, backend, status, items, time.Now().UTC().Format(time.RFC3339),
	)
	return errors.Wrap(err, "recording run")
}

// RecentRuns returns the newest entries, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, label, backend, status, items, recorded_at
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt string
		if err := rows.Scan(&e.RunID, &e.Label, &e.Backend, &e.Status, &e.Items, &recordedAt); err != nil {
			return nil, err
		}
		e.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SucceededLabels returns the labels that already succeeded in the given
// invocation, keyed by the shared invocation id. --resume uses this to skip
// finished targets.
func (s *Store) SucceededLabels(ctx context.Context, invocationID string) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT label FROM runs
		WHERE invocation_id = ? AND status = 'succeeded'`, invocationID)
	if err != nil {
		return nil, errors.Wrap(err, "listing succeeded labels")
	}
	defer rows.Close()

	labels := make(map[string]bool)
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels[label] = true
	}

	return labels, rows.Err()
}
