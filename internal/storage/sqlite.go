package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"shownotify/internal/idset"
	"shownotify/internal/model"
	"shownotify/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// LoadIDSet returns the persisted set for key, normalized.
func (s *SQLite) LoadIDSet(ctx context.Context, key string) (idset.Set, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id FROM id_sets WHERE set_key = ? ORDER BY item_id`, key,
	)
	if err != nil {
		return nil, fmt.Errorf("query id set %s: %w", key, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate id set %s: %w", key, err)
	}
	return idset.Normalize(ids), nil
}

// SaveIDSet replaces the persisted set for key.
func (s *SQLite) SaveIDSet(ctx context.Context, key string, ids []int64) error {
	return s.SaveIDSets(ctx, map[string][]int64{key: ids})
}

// SaveIDSets replaces several sets in one transaction.
func (s *SQLite) SaveIDSets(ctx context.Context, sets map[string][]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for key, ids := range sets {
		if _, err := tx.ExecContext(ctx, `DELETE FROM id_sets WHERE set_key = ?`, key); err != nil {
			return fmt.Errorf("clear id set %s: %w", key, err)
		}
		for _, id := range idset.Normalize(ids) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO id_sets (set_key, item_id) VALUES (?, ?)`, key, id,
			); err != nil {
				return fmt.Errorf("insert into id set %s: %w", key, err)
			}
		}
	}
	return tx.Commit()
}

// AddToIDSet adds ids to the persisted set. Adding an id that is
// already present is a no-op.
func (s *SQLite) AddToIDSet(ctx context.Context, key string, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range idset.Normalize(ids) {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO id_sets (set_key, item_id) VALUES (?, ?)`, key, id,
		); err != nil {
			return fmt.Errorf("add to id set %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// RemoveFromIDSet removes ids from the persisted set.
func (s *SQLite) RemoveFromIDSet(ctx context.Context, key string, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range idset.Normalize(ids) {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM id_sets WHERE set_key = ? AND item_id = ?`, key, id,
		); err != nil {
			return fmt.Errorf("remove from id set %s: %w", key, err)
		}
	}
	return tx.Commit()
}

// UpsertShowNames refreshes the show display-name cache.
func (s *SQLite) UpsertShowNames(ctx context.Context, names map[int64]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for id, name := range names {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO show_names (show_id, name) VALUES (?, ?)
			 ON CONFLICT(show_id) DO UPDATE SET name = excluded.name`,
			id, name,
		); err != nil {
			return fmt.Errorf("upsert show name %d: %w", id, err)
		}
	}
	return tx.Commit()
}

// ListShowNames returns the cached show display names.
func (s *SQLite) ListShowNames(ctx context.Context) (map[int64]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT show_id, name FROM show_names`)
	if err != nil {
		return nil, fmt.Errorf("query show names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	names := make(map[int64]string)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan show name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

// RecordPass appends one pass to the history.
func (s *SQLite) RecordPass(ctx context.Context, stats model.PassStats) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO passes (started_at, duration_ms, shows_checked, fetch_failures, in_window, visible, announced)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.Duration.Milliseconds(),
		stats.ShowsChecked,
		stats.FetchFailures,
		stats.InWindow,
		stats.Visible,
		stats.Announced,
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// LastPass returns the most recent pass, or nil if none has run.
func (s *SQLite) LastPass(ctx context.Context) (*model.PassStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT started_at, duration_ms, shows_checked, fetch_failures, in_window, visible, announced
		 FROM passes ORDER BY id DESC LIMIT 1`,
	)

	var stats model.PassStats
	var startedStr string
	var durationMs int64
	err := row.Scan(&startedStr, &durationMs, &stats.ShowsChecked, &stats.FetchFailures,
		&stats.InWindow, &stats.Visible, &stats.Announced)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan pass: %w", err)
	}
	stats.StartedAt, _ = time.Parse(timeLayout, startedStr)
	stats.Duration = time.Duration(durationMs) * time.Millisecond
	return &stats, nil
}
