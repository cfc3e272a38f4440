package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns connections, pipelines and logs.
// PasswordHash is a bcrypt hash and never leaves the server.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
