// Package warehouse provides the Snowflake adapter: connection testing,
// bounded query execution, and account-usage introspection for the
// dashboard surfaces.
package warehouse

import (
	"context"
	"time"
)

// Config holds the credential set for one warehouse connection.
type Config struct {
	Account   string
	Username  string
	Password  string
	Role      string
	Warehouse string

	// ConnectTimeout bounds the initial handshake. Zero means driver default.
	ConnectTimeout time.Duration
}

// MaxQueryLimit is the hard cap on rows returned by Query.
// This protects against unbounded queries that could crash the server.
const MaxQueryLimit = 1000

// Conn is an open warehouse session.
// Each implementation owns its connection and must be closed when done.
type Conn interface {
	// Ping verifies the warehouse is reachable with valid credentials.
	Ping(ctx context.Context) error

	// Query runs a read-only statement with positional bind parameters and
	// returns bounded results. SELECT and WITH statements are wrapped in a
	// bounded subquery; SHOW, DESCRIBE, and EXPLAIN run as written. limit
	// <= 0 or limit > MaxQueryLimit uses MaxQueryLimit.
	Query(ctx context.Context, sqlQuery string, limit int, args ...any) (*QueryResult, error)

	// WarehouseCosts returns per-warehouse credit consumption for the last
	// 30 days from ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY.
	WarehouseCosts(ctx context.Context) ([]CostRow, error)

	// QueryPerformance returns recent query timing rows from
	// ACCOUNT_USAGE.QUERY_HISTORY.
	QueryPerformance(ctx context.Context) ([]PerformanceRow, error)

	// StorageUsage returns daily storage consumption from
	// ACCOUNT_USAGE.STORAGE_USAGE.
	StorageUsage(ctx context.Context) ([]StorageRow, error)

	// Close releases the warehouse connection.
	Close() error
}

// Opener opens warehouse sessions. It exists so services can be tested
// against a fake warehouse.
type Opener interface {
	Open(ctx context.Context, cfg Config) (Conn, error)
}

// QueryResult contains the results of a query execution.
type QueryResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

// CostRow is one warehouse's credit consumption.
type CostRow struct {
	Warehouse string  `json:"warehouse"`
	Credits   float64 `json:"credits"`
}

// PerformanceRow is one query's timing summary.
type PerformanceRow struct {
	QueryID       string  `json:"queryId"`
	QueryText     string  `json:"queryText"`
	Warehouse     string  `json:"warehouse"`
	ElapsedMs     float64 `json:"elapsedMs"`
	BytesScanned  float64 `json:"bytesScanned"`
	RowsProduced  float64 `json:"rowsProduced"`
	ExecutionTime string  `json:"executionTime"`
}

// StorageRow is one day's storage consumption.
type StorageRow struct {
	Date         string  `json:"date"`
	StorageBytes float64 `json:"storageBytes"`
	StageBytes   float64 `json:"stageBytes"`
	FailsafeByte float64 `json:"failsafeBytes"`
}
