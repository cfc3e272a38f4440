package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/database"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// PipelineRepository defines the interface for pipeline data access.
type PipelineRepository interface {
	Create(ctx context.Context, p *models.Pipeline) error
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.Pipeline, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Pipeline, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, p *models.Pipeline) error
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

type pipelineRepository struct {
	db *database.DB
}

// NewPipelineRepository creates a new pipeline repository.
func NewPipelineRepository(db *database.DB) PipelineRepository {
	return &pipelineRepository{db: db}
}

func (r *pipelineRepository) Create(ctx context.Context, p *models.Pipeline) error {
	p.CreatedAt = time.Now()
	if p.Status == "" {
		p.Status = models.PipelineStatusActive
	}

	query := `
		INSERT INTO pipelines (user_id, name, description, source, target, schedule, status, last_run_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	err := r.db.QueryRow(ctx, query,
		p.UserID, p.Name, p.Description, p.Source, p.Target, p.Schedule, p.Status, p.LastRunAt, p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	return nil
}

func (r *pipelineRepository) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*models.Pipeline, error) {
	query := `
		SELECT id, user_id, name, description, source, target, schedule, status, last_run_at, created_at
		FROM pipelines
		WHERE user_id = $1 AND id = $2`

	var p models.Pipeline
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Source, &p.Target,
		&p.Schedule, &p.Status, &p.LastRunAt, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get pipeline: %w", err)
	}

	return &p, nil
}

func (r *pipelineRepository) List(ctx context.Context, userID uuid.UUID) ([]*models.Pipeline, error) {
	query := `
		SELECT id, user_id, name, description, source, target, schedule, status, last_run_at, created_at
		FROM pipelines
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipelines: %w", err)
	}
	defer rows.Close()

	var pipelines []*models.Pipeline
	for rows.Next() {
		var p models.Pipeline
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.Description, &p.Source, &p.Target,
			&p.Schedule, &p.Status, &p.LastRunAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pipeline: %w", err)
		}
		pipelines = append(pipelines, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pipelines: %w", err)
	}

	return pipelines, nil
}

func (r *pipelineRepository) Update(ctx context.Context, userID uuid.UUID, id int64, p *models.Pipeline) error {
	query := `
		UPDATE pipelines
		SET name = $3, description = $4, source = $5, target = $6, schedule = $7, status = $8, last_run_at = $9
		WHERE user_id = $1 AND id = $2`

	result, err := r.db.Exec(ctx, query, userID, id,
		p.Name, p.Description, p.Source, p.Target, p.Schedule, p.Status, p.LastRunAt)
	if err != nil {
		return fmt.Errorf("failed to update pipeline: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *pipelineRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	result, err := r.db.Exec(ctx, `DELETE FROM pipelines WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete pipeline: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

var _ PipelineRepository = (*pipelineRepository)(nil)
