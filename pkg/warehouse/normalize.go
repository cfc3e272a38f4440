package warehouse

import (
	"fmt"
	"strconv"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/jsonutil"
)

// Account-usage result shapes are loosely cased depending on driver and
// session settings (WAREHOUSE_NAME vs warehouseName). These normalizers are
// the ingestion boundary: every row is converted to a typed struct here,
// and rows missing required fields are rejected instead of leaking
// half-shaped maps into the rest of the system.

// NormalizeCostRows converts raw metering rows into CostRow values.
func NormalizeCostRows(rows []map[string]any) ([]CostRow, error) {
	out := make([]CostRow, 0, len(rows))
	for i, row := range rows {
		name := jsonutil.LookupString(row, "WAREHOUSE_NAME")
		if name == "" {
			return nil, fmt.Errorf("metering row %d: missing warehouse name", i)
		}

		credits, err := lookupFloat(row, "CREDITS_USED")
		if err != nil {
			return nil, fmt.Errorf("metering row %d: %w", i, err)
		}

		out = append(out, CostRow{Warehouse: name, Credits: credits})
	}
	return out, nil
}

// NormalizePerformanceRows converts raw query-history rows into
// PerformanceRow values.
func NormalizePerformanceRows(rows []map[string]any) ([]PerformanceRow, error) {
	out := make([]PerformanceRow, 0, len(rows))
	for i, row := range rows {
		id := jsonutil.LookupString(row, "QUERY_ID")
		if id == "" {
			return nil, fmt.Errorf("query history row %d: missing query id", i)
		}

		elapsed, err := lookupFloat(row, "TOTAL_ELAPSED_TIME")
		if err != nil {
			return nil, fmt.Errorf("query history row %d: %w", i, err)
		}

		// Scan volume fields are absent for metadata-only queries.
		bytesScanned, _ := lookupFloat(row, "BYTES_SCANNED")
		rowsProduced, _ := lookupFloat(row, "ROWS_PRODUCED")

		out = append(out, PerformanceRow{
			QueryID:       id,
			QueryText:     jsonutil.LookupString(row, "QUERY_TEXT"),
			Warehouse:     jsonutil.LookupString(row, "WAREHOUSE_NAME"),
			ElapsedMs:     elapsed,
			BytesScanned:  bytesScanned,
			RowsProduced:  rowsProduced,
			ExecutionTime: jsonutil.LookupString(row, "START_TIME"),
		})
	}
	return out, nil
}

// NormalizeStorageRows converts raw storage-usage rows into StorageRow values.
func NormalizeStorageRows(rows []map[string]any) ([]StorageRow, error) {
	out := make([]StorageRow, 0, len(rows))
	for i, row := range rows {
		date := jsonutil.LookupString(row, "USAGE_DATE")
		if date == "" {
			return nil, fmt.Errorf("storage row %d: missing usage date", i)
		}

		storage, err := lookupFloat(row, "STORAGE_BYTES")
		if err != nil {
			return nil, fmt.Errorf("storage row %d: %w", i, err)
		}
		stage, _ := lookupFloat(row, "STAGE_BYTES")
		failsafe, _ := lookupFloat(row, "FAILSAFE_BYTES")

		out = append(out, StorageRow{
			Date:         date,
			StorageBytes: storage,
			StageBytes:   stage,
			FailsafeByte: failsafe,
		})
	}
	return out, nil
}

// lookupFloat finds a numeric field regardless of key casing and coerces
// driver string values (Snowflake returns NUMBER columns as strings).
func lookupFloat(row map[string]any, name string) (float64, error) {
	v, ok := jsonutil.Lookup(row, name)
	if !ok || v == nil {
		return 0, fmt.Errorf("missing field %s", name)
	}

	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case int:
		return float64(val), nil
	case string:
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("field %s: %q is not numeric", name, val)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("field %s: unexpected type %T", name, v)
	}
}
