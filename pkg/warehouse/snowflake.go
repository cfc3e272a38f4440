package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
)

// snowflakeOpener opens sessions through the gosnowflake driver.
type snowflakeOpener struct {
	logger *zap.Logger
}

// NewOpener creates the production Snowflake opener.
func NewOpener(logger *zap.Logger) Opener {
	return &snowflakeOpener{logger: logger.Named("warehouse")}
}

func (o *snowflakeOpener) Open(ctx context.Context, cfg Config) (Conn, error) {
	sfCfg := &sf.Config{
		Account:   cfg.Account,
		User:      cfg.Username,
		Password:  cfg.Password,
		Role:      cfg.Role,
		Warehouse: cfg.Warehouse,
	}
	if cfg.ConnectTimeout > 0 {
		sfCfg.LoginTimeout = cfg.ConnectTimeout
	}

	dsn, err := sf.DSN(sfCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := sql.Open("snowflake", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open Snowflake connection: %w", err)
	}

	o.logger.Debug("Opened warehouse session",
		zap.String("account", cfg.Account),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	return &snowflakeConn{db: db, logger: o.logger}, nil
}

// snowflakeConn implements Conn over database/sql.
type snowflakeConn struct {
	db     *sql.DB
	logger *zap.Logger
}

func (c *snowflakeConn) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		c.logger.Debug("Warehouse ping failed", zap.String("error", logging.SanitizeError(err)))
		return fmt.Errorf("warehouse unreachable: %w", err)
	}
	return nil
}

func (c *snowflakeConn) Query(ctx context.Context, sqlQuery string, limit int, args ...any) (*QueryResult, error) {
	if limit <= 0 || limit > MaxQueryLimit {
		limit = MaxQueryLimit
	}

	stmt := boundQuery(sqlQuery, limit)

	c.logger.Debug("Executing warehouse query", zap.String("query", logging.SanitizeQuery(sqlQuery)))

	rows, err := c.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// boundQuery caps the rows an arbitrary user statement can return. SELECT
// and WITH statements are wrapped as a bounded subquery; SHOW, DESCRIBE,
// and EXPLAIN do not compose as subqueries (Snowflake requires RESULT_SCAN
// for that) and their output is inherently bounded, so they run as written.
// Trailing semicolons are stripped either way since they break the wrap.
func boundQuery(sqlQuery string, limit int) string {
	trimmed := strings.TrimRight(strings.TrimSpace(sqlQuery), "; \t\r\n")

	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return trimmed
	}

	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return fmt.Sprintf("SELECT * FROM (%s) LIMIT %d", trimmed, limit)
	}
	return trimmed
}

const warehouseCostsSQL = `
SELECT WAREHOUSE_NAME, SUM(CREDITS_USED) AS CREDITS_USED
FROM SNOWFLAKE.ACCOUNT_USAGE.WAREHOUSE_METERING_HISTORY
WHERE START_TIME >= DATEADD(day, -30, CURRENT_TIMESTAMP())
GROUP BY WAREHOUSE_NAME
ORDER BY CREDITS_USED DESC`

func (c *snowflakeConn) WarehouseCosts(ctx context.Context) ([]CostRow, error) {
	rows, err := c.db.QueryContext(ctx, warehouseCostsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query warehouse metering history: %w", err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	return NormalizeCostRows(result.Rows)
}

const queryPerformanceSQL = `
SELECT QUERY_ID, QUERY_TEXT, WAREHOUSE_NAME, TOTAL_ELAPSED_TIME,
       BYTES_SCANNED, ROWS_PRODUCED, START_TIME
FROM SNOWFLAKE.ACCOUNT_USAGE.QUERY_HISTORY
WHERE START_TIME >= DATEADD(day, -7, CURRENT_TIMESTAMP())
ORDER BY TOTAL_ELAPSED_TIME DESC
LIMIT 100`

func (c *snowflakeConn) QueryPerformance(ctx context.Context) ([]PerformanceRow, error) {
	rows, err := c.db.QueryContext(ctx, queryPerformanceSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance history: %w", err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	return NormalizePerformanceRows(result.Rows)
}

const storageUsageSQL = `
SELECT USAGE_DATE, STORAGE_BYTES, STAGE_BYTES, FAILSAFE_BYTES
FROM SNOWFLAKE.ACCOUNT_USAGE.STORAGE_USAGE
WHERE USAGE_DATE >= DATEADD(day, -30, CURRENT_DATE())
ORDER BY USAGE_DATE`

func (c *snowflakeConn) StorageUsage(ctx context.Context) ([]StorageRow, error) {
	rows, err := c.db.QueryContext(ctx, storageUsageSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query storage usage: %w", err)
	}
	defer rows.Close()

	result, err := collectRows(rows)
	if err != nil {
		return nil, err
	}

	return NormalizeStorageRows(result.Rows)
}

func (c *snowflakeConn) Close() error {
	return c.db.Close()
}

// collectRows drains sql.Rows into a QueryResult with one map per row.
func collectRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	result := &QueryResult{Columns: columns}

	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		result.Rows = append(result.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	result.RowCount = len(result.Rows)
	return result, nil
}

// Ensure implementations satisfy the interfaces at compile time.
var (
	_ Opener = (*snowflakeOpener)(nil)
	_ Conn   = (*snowflakeConn)(nil)
)
