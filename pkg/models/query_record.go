package models

import (
	"time"

	"github.com/google/uuid"
)

// Query record statuses.
const (
	QueryStatusSuccess = "success"
	QueryStatusError   = "error"
)

// QueryRecord is one executed (or attempted) user query.
type QueryRecord struct {
	ID            int64     `json:"id"`
	UserID        uuid.UUID `json:"-"`
	ConnectionID  int64     `json:"connectionId"`
	QueryText     string    `json:"queryText"`
	Status        string    `json:"status"`
	DurationMs    int64     `json:"durationMs"`
	ResultSummary string    `json:"resultSummary"`
	CreatedAt     time.Time `json:"createdAt"`
}
