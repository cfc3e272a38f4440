package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// QueryRepository defines the interface for query history data access.
type QueryRepository interface {
	Create(ctx context.Context, rec *models.QueryRecord) error
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryRecord, error)
}

type queryRepository struct {
	db *database.DB
}

// NewQueryRepository creates a new query history repository.
func NewQueryRepository(db *database.DB) QueryRepository {
	return &queryRepository{db: db}
}

func (r *queryRepository) Create(ctx context.Context, rec *models.QueryRecord) error {
	rec.CreatedAt = time.Now()

	query := `
		INSERT INTO query_history (user_id, connection_id, query_text, status, duration_ms, result_summary, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		rec.UserID, rec.ConnectionID, rec.QueryText, rec.Status, rec.DurationMs, rec.ResultSummary, rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to record query: %w", err)
	}

	return nil
}

func (r *queryRepository) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, connection_id, query_text, status, duration_ms, result_summary, created_at
		FROM query_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer rows.Close()

	var records []*models.QueryRecord
	for rows.Next() {
		var rec models.QueryRecord
		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ConnectionID, &rec.QueryText,
			&rec.Status, &rec.DurationMs, &rec.ResultSummary, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating query history: %w", err)
	}

	return records, nil
}

var _ QueryRepository = (*queryRepository)(nil)
