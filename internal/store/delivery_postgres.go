// Package store provides storage backends for GiftRoulette.
//
// This file implements a PostgreSQL-backed delivery log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/mroldan/giftroulette/internal/util"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore is a PostgreSQL-backed delivery log.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements DeliveryRepo.
var _ DeliveryRepo = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres delivery log based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) RecordQueued(runID, giver, channel string) (string, error) {
	id := util.GenerateDeliveryID()
	now := time.Now()
	_, err := s.db.Exec(
		`INSERT INTO deliveries (id, run_id, giver, channel, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 'queued', $5, $6)`,
		id, runID, giver, channel, now, now,
	)
	if err != nil {
		return "", fmt.Errorf("record queued delivery failed: %w", err)
	}
	slog.Debug("PostgresStore.RecordQueued", "id", id, "runID", runID, "giver", giver)
	return id, nil
}

func (s *PostgresStore) MarkSent(id string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE deliveries SET status = 'sent', updated_at = $1 WHERE id = $2`,
		now, id,
	)
	if err != nil {
		return fmt.Errorf("mark delivery sent failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkFailed(id string, errMsg string) error {
	now := time.Now()
	_, err := s.db.Exec(
		`UPDATE deliveries SET status = 'failed', last_error = $1, updated_at = $2 WHERE id = $3`,
		errMsg, now, id,
	)
	if err != nil {
		return fmt.Errorf("mark delivery failed failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByRun(runID string) ([]DeliveryRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, giver, channel, status, last_error, created_at, updated_at
		 FROM deliveries WHERE run_id = $1 ORDER BY created_at ASC`,
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
	slog.Debug("PostgresStore.ListByRun succeeded", "runID", runID, "count", len(records))
	return records, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
