package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autocheckhq/autocheck/internal/common"
	"github.com/autocheckhq/autocheck/internal/localstore/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteKV implements KV on a single-file SQLite database. A quota of zero
// means unlimited; otherwise Set fails with common.ErrStorageQuota when the
// total stored value bytes would exceed it.
type SQLiteKV struct {
	db    *sql.DB
	quota int64
}

// OpenSQLite opens (creating if needed) the database at dsn and runs the
// embedded migrations. quotaBytes caps the total size of stored values.
func OpenSQLite(ctx context.Context, dsn string, quotaBytes int64) (*SQLiteKV, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteKV{db: db, quota: quotaBytes}, nil
}

func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return value, true, nil
}

// Set runs the quota check and the upsert in one transaction so concurrent
// writers cannot race the budget past its limit.
func (s *SQLiteKV) Set(ctx context.Context, key string, value string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin write for key %q: %w", key, err)
	}
	defer tx.Rollback()

	if s.quota > 0 {
		var others int64
		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(LENGTH(value)), 0) FROM kv WHERE key <> ?`, key).Scan(&others)
		if err != nil {
			return fmt.Errorf("failed to compute stored size: %w", err)
		}
		if others+int64(len(value)) > s.quota {
			return fmt.Errorf("writing %q (%d bytes): %w", key, len(value), common.ErrStorageQuota)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return fmt.Errorf("failed to write key %q: %w", key, err)
	}
	return tx.Commit()
}

func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *SQLiteKV) Close() error {
	return s.db.Close()
}
