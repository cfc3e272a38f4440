package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/warehouse"
)

func newTestDashboardService(t *testing.T, conn *warehouse.MockConn) (DashboardService, *warehouse.MockOpener, uuid.UUID) {
	t.Helper()
	repo := newFakeConnectionRepo()
	opener := &warehouse.MockOpener{Conn: conn}
	connections := newTestConnectionService(t, repo, opener)
	userID := uuid.New()
	if _, err := connections.Create(context.Background(), userID, validInput()); err != nil {
		t.Fatalf("failed to seed connection: %v", err)
	}

	svc := NewDashboardService(connections, nil, time.Minute, zap.NewNop())
	return svc, opener, userID
}

func TestCostsReturnsWarehouseRows(t *testing.T) {
	conn := &warehouse.MockConn{Costs: []warehouse.CostRow{
		{Warehouse: "COMPUTE_WH", Credits: 12.5},
		{Warehouse: "LOAD_WH", Credits: 3.25},
	}}
	svc, _, userID := newTestDashboardService(t, conn)

	rows, err := svc.Costs(context.Background(), userID)
	if err != nil {
		t.Fatalf("Costs failed: %v", err)
	}
	if len(rows) != 2 || rows[0].Warehouse != "COMPUTE_WH" {
		t.Errorf("unexpected rows %v", rows)
	}
	if !conn.Closed {
		t.Error("expected warehouse session closed after panel fetch")
	}
}

func TestPerformancePropagatesFailure(t *testing.T) {
	conn := &warehouse.MockConn{PerformanceErr: errors.New("ACCOUNT_USAGE not granted")}
	svc, _, userID := newTestDashboardService(t, conn)

	_, err := svc.Performance(context.Background(), userID)
	if err == nil {
		t.Fatal("expected error from failed panel query")
	}
}

func TestStorageWithoutActiveConnection(t *testing.T) {
	repo := newFakeConnectionRepo()
	connections := newTestConnectionService(t, repo, &warehouse.MockOpener{Conn: &warehouse.MockConn{}})
	svc := NewDashboardService(connections, nil, time.Minute, zap.NewNop())

	_, err := svc.Storage(context.Background(), uuid.New())
	if !errors.Is(err, apperrors.ErrNoActiveConnection) {
		t.Errorf("expected ErrNoActiveConnection, got %v", err)
	}
}
