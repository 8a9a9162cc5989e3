// Package store provides the DeliveryRepo interface and model for durable
// notification outcome records.
package store

import "time"

// DeliveryStatus represents the lifecycle state of a notification.
type DeliveryStatus string

const (
	DeliveryStatusQueued DeliveryStatus = "queued"
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// DeliveryRecord represents one giver's notification outcome within a run.
// A failed notify phase can be rerun from these records without repeating
// the pairing itself.
type DeliveryRecord struct {
	ID        string         `json:"id"`
	RunID     string         `json:"run_id"`
	Giver     string         `json:"giver"`
	Channel   string         `json:"channel"`
	Status    DeliveryStatus `json:"status"`
	LastError string         `json:"last_error"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DeliveryRepo defines the interface for durable delivery record persistence.
type DeliveryRepo interface {
	// RecordQueued inserts a queued delivery record and returns its ID.
	RecordQueued(runID, giver, channel string) (string, error)

	// MarkSent marks a delivery as successfully sent.
	MarkSent(id string) error

	// MarkFailed records a send failure with its error message.
	MarkFailed(id string, errMsg string) error

	// ListByRun returns all delivery records for a run, oldest first.
	ListByRun(runID string) ([]DeliveryRecord, error)

	// Close releases the underlying database handle.
	Close() error
}
