package models

import (
	"time"

	"github.com/google/uuid"
)

// Activity actions recorded by the engine.
const (
	ActivityConnectionCreated   = "connection_created"
	ActivityConnectionActivated = "connection_activated"
	ActivityConnectionDeleted   = "connection_deleted"
	ActivityPipelineCreated     = "pipeline_created"
	ActivityPipelineUpdated     = "pipeline_updated"
	ActivityPipelineDeleted     = "pipeline_deleted"
	ActivityQueryExecuted       = "query_executed"
	ActivityQueryAnalyzed       = "query_analyzed"
	ActivityErrorAnalyzed       = "error_analyzed"
)

// ActivityLog is one audit trail entry.
type ActivityLog struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"createdAt"`
}
