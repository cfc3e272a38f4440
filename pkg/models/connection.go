package models

import (
	"time"

	"github.com/google/uuid"
)

// Connection is one configured credential set for a Snowflake warehouse.
// Password is write-only from the client's perspective: it is accepted on
// create/update, stored encrypted, and never serialized back out.
// At most one connection per user has IsActive set; the connection
// repository enforces this in a single transaction on activation.
type Connection struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"-"`
	Name      string    `json:"name"`
	Account   string    `json:"account"`
	Username  string    `json:"username"`
	Password  string    `json:"-"`
	Role      string    `json:"role"`
	Warehouse string    `json:"warehouse"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}
