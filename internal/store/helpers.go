package store

import (
	"database/sql"
	"fmt"
)

// scanDeliveryRecord scans a DeliveryRecord from sql.Rows.
func scanDeliveryRecord(rows *sql.Rows) (DeliveryRecord, error) {
	var r DeliveryRecord
	var lastError sql.NullString
	err := rows.Scan(
		&r.ID, &r.RunID, &r.Giver, &r.Channel, &r.Status,
		&lastError, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("scan delivery record failed: %w", err)
	}
	r.LastError = lastError.String
	return r, nil
}
