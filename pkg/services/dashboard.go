package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/warehouse"
)

// DashboardService serves the cost, performance, and storage panels. Results
// come from the active connection's ACCOUNT_USAGE views and are cached in
// Redis per user and panel. A nil Redis client disables caching.
type DashboardService interface {
	Costs(ctx context.Context, userID uuid.UUID) ([]warehouse.CostRow, error)
	Performance(ctx context.Context, userID uuid.UUID) ([]warehouse.PerformanceRow, error)
	Storage(ctx context.Context, userID uuid.UUID) ([]warehouse.StorageRow, error)
}

type dashboardService struct {
	connections ConnectionService
	cache       *redis.Client
	ttl         time.Duration
	logger      *zap.Logger
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	connections ConnectionService,
	cache *redis.Client,
	ttl time.Duration,
	logger *zap.Logger,
) DashboardService {
	return &dashboardService{
		connections: connections,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
	}
}

func (s *dashboardService) Costs(ctx context.Context, userID uuid.UUID) ([]warehouse.CostRow, error) {
	return fetchPanel(ctx, s, userID, "costs", func(ctx context.Context, conn warehouse.Conn) ([]warehouse.CostRow, error) {
		return conn.WarehouseCosts(ctx)
	})
}

func (s *dashboardService) Performance(ctx context.Context, userID uuid.UUID) ([]warehouse.PerformanceRow, error) {
	return fetchPanel(ctx, s, userID, "performance", func(ctx context.Context, conn warehouse.Conn) ([]warehouse.PerformanceRow, error) {
		return conn.QueryPerformance(ctx)
	})
}

func (s *dashboardService) Storage(ctx context.Context, userID uuid.UUID) ([]warehouse.StorageRow, error) {
	return fetchPanel(ctx, s, userID, "storage", func(ctx context.Context, conn warehouse.Conn) ([]warehouse.StorageRow, error) {
		return conn.StorageUsage(ctx)
	})
}

// fetchPanel answers from cache when possible, otherwise opens the active
// connection, queries the panel, and caches the result. Cache failures are
// logged and never fail the request.
func fetchPanel[T any](
	ctx context.Context,
	s *dashboardService,
	userID uuid.UUID,
	panel string,
	query func(ctx context.Context, conn warehouse.Conn) ([]T, error),
) ([]T, error) {
	key := fmt.Sprintf("dashboard:%s:%s", userID, panel)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var rows []T
			if err := json.Unmarshal(cached, &rows); err == nil {
				return rows, nil
			}
			// Corrupt entry: fall through and refetch.
			s.cache.Del(ctx, key)
		} else if err != redis.Nil {
			s.logger.Warn("Dashboard cache read failed", zap.String("panel", panel), zap.Error(err))
		}
	}

	conn, _, err := s.connections.OpenActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	rows, err := query(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s panel: %w", panel, err)
	}

	if s.cache != nil {
		payload, err := json.Marshal(rows)
		if err == nil {
			if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
				s.logger.Warn("Dashboard cache write failed", zap.String("panel", panel), zap.Error(err))
			}
		}
	}

	return rows, nil
}

var _ DashboardService = (*dashboardService)(nil)
