package models

import (
	"time"

	"github.com/google/uuid"
)

// Pipeline statuses.
const (
	PipelineStatusActive  = "active"
	PipelineStatusPaused  = "paused"
	PipelineStatusFailed  = "failed"
	PipelineStatusUnknown = "unknown"
)

// Pipeline is a user-managed ETL pipeline record. The engine stores and
// serves these; it does not schedule or run them.
type Pipeline struct {
	ID          int64      `json:"id"`
	UserID      uuid.UUID  `json:"-"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	Target      string     `json:"target"`
	Schedule    string     `json:"schedule"`
	Status      string     `json:"status"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
