package warehouse

import "context"

// MockOpener is a test double implementing Opener.
type MockOpener struct {
	// OpenFunc overrides Open when set.
	OpenFunc func(ctx context.Context, cfg Config) (Conn, error)
	// Conn is returned when OpenFunc is nil.
	Conn Conn
	// LastConfig records the most recent Open call.
	LastConfig Config
	// OpenCalls counts Open invocations.
	OpenCalls int
}

func (m *MockOpener) Open(ctx context.Context, cfg Config) (Conn, error) {
	m.OpenCalls++
	m.LastConfig = cfg
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, cfg)
	}
	return m.Conn, nil
}

// MockConn is a test double implementing Conn.
type MockConn struct {
	PingErr         error
	QueryResult     *QueryResult
	QueryErr        error
	Costs           []CostRow
	CostsErr        error
	Performance     []PerformanceRow
	PerformanceErr  error
	Storage         []StorageRow
	StorageErr      error
	Closed          bool
	ExecutedQueries []string
	LastArgs        []any
}

func (m *MockConn) Ping(ctx context.Context) error { return m.PingErr }

func (m *MockConn) Query(ctx context.Context, sqlQuery string, limit int, args ...any) (*QueryResult, error) {
	m.ExecutedQueries = append(m.ExecutedQueries, sqlQuery)
	m.LastArgs = args
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if m.QueryResult != nil {
		return m.QueryResult, nil
	}
	return &QueryResult{}, nil
}

func (m *MockConn) WarehouseCosts(ctx context.Context) ([]CostRow, error) {
	return m.Costs, m.CostsErr
}

func (m *MockConn) QueryPerformance(ctx context.Context) ([]PerformanceRow, error) {
	return m.Performance, m.PerformanceErr
}

func (m *MockConn) StorageUsage(ctx context.Context) ([]StorageRow, error) {
	return m.Storage, m.StorageErr
}

func (m *MockConn) Close() error {
	m.Closed = true
	return nil
}

var (
	_ Opener = (*MockOpener)(nil)
	_ Conn   = (*MockConn)(nil)
)
