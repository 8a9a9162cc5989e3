// Package store provides storage backends for GiftRoulette.
//
// This file implements an SQLite-backed delivery log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mroldan/giftroulette/internal/util"
)

// DefaultDirPermissions defines the default permissions for database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore is an SQLite-backed delivery log.
type SQLiteStore struct {
	db *sql.DB
}

// Compile-time check that SQLiteStore implements DeliveryRepo.
var _ DeliveryRepo = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite delivery log with the given DSN.
// The DSN is a file path to the SQLite database file; its directory is
// created if missing.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) RecordQueued(runID, giver, channel string) (string, error) {
	id := util.GenerateDeliveryID()
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO deliveries (id, run_id, giver, channel, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 'queued', ?, ?)`,
		id, runID, giver, channel, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("record queued delivery failed: %w", err)
	}
	slog.Debug("SQLiteStore.RecordQueued", "id", id, "runID", runID, "giver", giver)
	return id, nil
}

func (s *SQLiteStore) MarkSent(id string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE deliveries SET status = 'sent', updated_at = ? WHERE id = ?`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("mark delivery sent failed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkFailed(id string, errMsg string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE deliveries SET status = 'failed', last_error = ?, updated_at = ? WHERE id = ?`,
		errMsg, now, id,
	)
	if err != nil {
		return fmt.Errorf("mark delivery failed failed: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListByRun(runID string) ([]DeliveryRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, giver, channel, status, last_error, created_at, updated_at
		 FROM deliveries WHERE run_id = ? ORDER BY created_at ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list deliveries failed: %w", err)
	}
	defer rows.Close()

	var records []DeliveryRecord
	for rows.Next() {
		r, err := scanDeliveryRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list deliveries iteration failed: %w", err)
	}
	slog.Debug("SQLiteStore.ListByRun succeeded", "runID", runID, "count", len(records))
	return records, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
