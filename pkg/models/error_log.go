package models

import (
	"time"

	"github.com/google/uuid"
)

// ErrorLog is a captured warehouse or query error, optionally annotated
// with an LLM analysis.
type ErrorLog struct {
	ID           int64     `json:"id"`
	UserID       uuid.UUID `json:"-"`
	ConnectionID int64     `json:"connectionId"`
	ErrorText    string    `json:"errorText"`
	Analysis     string    `json:"analysis,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}
