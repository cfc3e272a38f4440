package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// ErrorLogRepository defines the interface for error log data access.
type ErrorLogRepository interface {
	Create(ctx context.Context, log *models.ErrorLog) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ErrorLog, error)
}

type errorLogRepository struct {
	db *database.DB
}

// NewErrorLogRepository creates a new error log repository.
func NewErrorLogRepository(db *database.DB) ErrorLogRepository {
	return &errorLogRepository{db: db}
}

func (r *errorLogRepository) Create(ctx context.Context, log *models.ErrorLog) error {
	log.CreatedAt = time.Now()

	// connection_id is nullable: errors can be captured before any
	// connection exists.
	var connID *int64
	if log.ConnectionID != 0 {
		connID = &log.ConnectionID
	}

	query := `
		INSERT INTO error_logs (user_id, connection_id, error_text, analysis, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		log.UserID, connID, log.ErrorText, log.Analysis, log.CreatedAt,
	).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to record error log: %w", err)
	}

	return nil
}

func (r *errorLogRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ErrorLog, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, connection_id, error_text, analysis, created_at
		FROM error_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list error logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.ErrorLog
	for rows.Next() {
		var log models.ErrorLog
		var connID *int64
		err := rows.Scan(&log.ID, &log.UserID, &connID, &log.ErrorText, &log.Analysis, &log.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan error log: %w", err)
		}
		if connID != nil {
			log.ConnectionID = *connID
		}
		logs = append(logs, &log)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating error logs: %w", err)
	}

	return logs, nil
}

var _ ErrorLogRepository = (*errorLogRepository)(nil)
