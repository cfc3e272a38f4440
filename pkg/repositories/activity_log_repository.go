package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// ActivityLogRepository defines the interface for activity log data access.
type ActivityLogRepository interface {
	Create(ctx context.Context, log *models.ActivityLog) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error)
}

type activityLogRepository struct {
	db *database.DB
}

// NewActivityLogRepository creates a new activity log repository.
func NewActivityLogRepository(db *database.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, log *models.ActivityLog) error {
	log.CreatedAt = time.Now()

	query := `
		INSERT INTO activity_logs (user_id, action, detail, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := r.db.QueryRow(ctx, query, log.UserID, log.Action, log.Detail, log.CreatedAt).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}

	return nil
}

func (r *activityLogRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, action, detail, created_at
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ActivityLog
	for rows.Next() {
		var log models.ActivityLog
		if err := rows.Scan(&log.ID, &log.UserID, &log.Action, &log.Detail, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity log: %w", err)
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity logs: %w", err)
	}

	return logs, nil
}

var _ ActivityLogRepository = (*activityLogRepository)(nil)
