// Package store provides storage backends for GiftRoulette.
//
// It includes a JSON file store for the concealed assignment set and
// SQLite/Postgres backed delivery logs for notification outcomes.
package store

import "github.com/mroldan/giftroulette/internal/models"

// AssignmentStore persists a concealed assignment set exactly once per run.
type AssignmentStore interface {
	// Save writes the concealed assignment set, overwriting any previous
	// file. A full flush happens before Save reports success.
	Save(set models.AssignmentSet) error

	// Load reads a previously saved assignment set back. Recipient fields
	// remain in their concealed form.
	Load() (models.AssignmentSet, error)
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite).
	DSN string
}

// Option defines a configuration option for store backends.
type Option func(*Opts)

// WithDSN sets the database connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}
