package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
)

// ActivityRecorder records audit trail entries. Recording is best-effort:
// a failed insert is logged and never fails the calling operation.
type ActivityRecorder interface {
	Record(ctx context.Context, userID uuid.UUID, action, detail string)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error)
}

type activityRecorder struct {
	repo   repositories.ActivityLogRepository
	logger *zap.Logger
}

// NewActivityRecorder creates a new activity recorder.
func NewActivityRecorder(repo repositories.ActivityLogRepository, logger *zap.Logger) ActivityRecorder {
	return &activityRecorder{repo: repo, logger: logger}
}

func (s *activityRecorder) Record(ctx context.Context, userID uuid.UUID, action, detail string) {
	log := &models.ActivityLog{
		UserID: userID,
		Action: action,
		Detail: detail,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		s.logger.Warn("Failed to record activity",
			zap.String("action", action),
			zap.Error(err))
	}
}

func (s *activityRecorder) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ActivityLog, error) {
	return s.repo.List(ctx, userID, limit)
}

var _ ActivityRecorder = (*activityRecorder)(nil)
