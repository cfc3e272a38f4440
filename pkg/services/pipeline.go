package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
)

// PipelineInput carries the fields accepted when creating or updating a
// pipeline. Empty optional fields keep their stored values on update.
type PipelineInput struct {
	Name        string
	Description string
	Source      string
	Target      string
	Schedule    string
	Status      string
	LastRunAt   *time.Time
}

// PipelineService defines the interface for pipeline operations.
type PipelineService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*models.Pipeline, error)
	Get(ctx context.Context, userID uuid.UUID, id int64) (*models.Pipeline, error)
	Create(ctx context.Context, userID uuid.UUID, input PipelineInput) (*models.Pipeline, error)
	Update(ctx context.Context, userID uuid.UUID, id int64, input PipelineInput) (*models.Pipeline, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}

type pipelineService struct {
	repo     repositories.PipelineRepository
	activity ActivityRecorder
	logger   *zap.Logger
}

// NewPipelineService creates a new pipeline service.
func NewPipelineService(repo repositories.PipelineRepository, activity ActivityRecorder, logger *zap.Logger) PipelineService {
	return &pipelineService{repo: repo, activity: activity, logger: logger}
}

func (s *pipelineService) List(ctx context.Context, userID uuid.UUID) ([]*models.Pipeline, error) {
	return s.repo.List(ctx, userID)
}

func (s *pipelineService) Get(ctx context.Context, userID uuid.UUID, id int64) (*models.Pipeline, error) {
	return s.repo.GetByID(ctx, userID, id)
}

func (s *pipelineService) Create(ctx context.Context, userID uuid.UUID, input PipelineInput) (*models.Pipeline, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("pipeline name is required")
	}
	if input.Source == "" || input.Target == "" {
		return nil, fmt.Errorf("pipeline source and target are required")
	}
	if err := validateStatus(input.Status); err != nil {
		return nil, err
	}

	p := &models.Pipeline{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Source:      input.Source,
		Target:      input.Target,
		Schedule:    input.Schedule,
		Status:      input.Status,
		LastRunAt:   input.LastRunAt,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("Created pipeline", zap.Int64("pipeline_id", p.ID), zap.String("name", p.Name))
	s.activity.Record(ctx, userID, models.ActivityPipelineCreated, p.Name)

	return p, nil
}

func (s *pipelineService) Update(ctx context.Context, userID uuid.UUID, id int64, input PipelineInput) (*models.Pipeline, error) {
	current, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateStatus(input.Status); err != nil {
		return nil, err
	}

	merged := *current
	if input.Name != "" {
		merged.Name = input.Name
	}
	if input.Description != "" {
		merged.Description = input.Description
	}
	if input.Source != "" {
		merged.Source = input.Source
	}
	if input.Target != "" {
		merged.Target = input.Target
	}
	if input.Schedule != "" {
		merged.Schedule = input.Schedule
	}
	if input.Status != "" {
		merged.Status = input.Status
	}
	if input.LastRunAt != nil {
		merged.LastRunAt = input.LastRunAt
	}

	if err := s.repo.Update(ctx, userID, id, &merged); err != nil {
		return nil, err
	}

	s.activity.Record(ctx, userID, models.ActivityPipelineUpdated, merged.Name)

	return &merged, nil
}

func (s *pipelineService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	p, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	s.logger.Info("Deleted pipeline", zap.Int64("pipeline_id", id))
	s.activity.Record(ctx, userID, models.ActivityPipelineDeleted, p.Name)

	return nil
}

func validateStatus(status string) error {
	switch status {
	case "", models.PipelineStatusActive, models.PipelineStatusPaused,
		models.PipelineStatusFailed, models.PipelineStatusUnknown:
		return nil
	}
	return fmt.Errorf("invalid pipeline status: %q", status)
}

var _ PipelineService = (*pipelineService)(nil)
