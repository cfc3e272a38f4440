package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
	sqlscreen "github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/sql"
)

// QueryService executes read-only queries on the user's active connection
// and keeps a per-user execution history.
type QueryService interface {
	// Execute screens the statement and its bind parameters, runs it on the
	// active connection, and records the outcome. Write statements and
	// parameters carrying injection patterns are rejected with ErrRejected.
	Execute(ctx context.Context, userID uuid.UUID, queryText string, params []any, limit int) (*QueryExecution, error)

	// History returns the most recent query records, newest first.
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryRecord, error)
}

// QueryExecution bundles the warehouse result with its history record.
type QueryExecution struct {
	Result *models.QueryRecord `json:"record"`
	Rows   *QueryRows          `json:"result"`
}

// QueryRows is the tabular payload returned to the console.
type QueryRows struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

type queryService struct {
	connections ConnectionService
	history     repositories.QueryRepository
	errorLogs   repositories.ErrorLogRepository
	activity    ActivityRecorder
	logger      *zap.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(
	connections ConnectionService,
	history repositories.QueryRepository,
	errorLogs repositories.ErrorLogRepository,
	activity ActivityRecorder,
	logger *zap.Logger,
) QueryService {
	return &queryService{
		connections: connections,
		history:     history,
		errorLogs:   errorLogs,
		activity:    activity,
		logger:      logger,
	}
}

func (s *queryService) Execute(ctx context.Context, userID uuid.UUID, queryText string, params []any, limit int) (*QueryExecution, error) {
	if queryText == "" {
		return nil, fmt.Errorf("query text is required")
	}

	readOnly, verb := sqlscreen.IsReadOnly(queryText)
	if !readOnly {
		if verb == "" {
			return nil, fmt.Errorf("%w: statement is empty or unparseable", apperrors.ErrRejected)
		}
		return nil, fmt.Errorf("%w: %s statements are not allowed in the query console", apperrors.ErrRejected, verb)
	}

	for i, value := range params {
		if result := sqlscreen.CheckParameterForInjection(fmt.Sprintf("param[%d]", i), value); result != nil {
			s.logger.Warn("Rejected query parameter",
				zap.String("user_id", userID.String()),
				zap.String("param", result.ParamName),
				zap.String("fingerprint", result.Fingerprint))
			return nil, fmt.Errorf("%w: parameter %d contains a SQL injection pattern", apperrors.ErrRejected, i+1)
		}
	}

	conn, active, err := s.connections.OpenActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	start := time.Now()
	result, err := conn.Query(ctx, queryText, limit, params...)
	durationMs := time.Since(start).Milliseconds()

	rec := &models.QueryRecord{
		UserID:       userID,
		ConnectionID: active.ID,
		QueryText:    queryText,
		DurationMs:   durationMs,
	}

	if err != nil {
		rec.Status = models.QueryStatusError
		rec.ResultSummary = logging.TruncateString(err.Error(), 500)
		s.record(ctx, rec)
		s.recordError(ctx, userID, active.ID, err)
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	rec.Status = models.QueryStatusSuccess
	rec.ResultSummary = fmt.Sprintf("%d rows", result.RowCount)
	s.record(ctx, rec)

	s.logger.Info("Executed query",
		zap.String("user_id", userID.String()),
		zap.Int64("connection_id", active.ID),
		zap.Int("rows", result.RowCount),
		zap.Int64("duration_ms", durationMs))
	s.activity.Record(ctx, userID, models.ActivityQueryExecuted, rec.ResultSummary)

	return &QueryExecution{
		Result: rec,
		Rows: &QueryRows{
			Columns:  result.Columns,
			Rows:     result.Rows,
			RowCount: result.RowCount,
		},
	}, nil
}

func (s *queryService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QueryRecord, error) {
	return s.history.List(ctx, userID, limit)
}

// record persists the history row. History is best-effort: a failed insert
// never fails the query itself.
func (s *queryService) record(ctx context.Context, rec *models.QueryRecord) {
	if err := s.history.Create(ctx, rec); err != nil {
		s.logger.Warn("Failed to record query history", zap.Error(err))
	}
}

func (s *queryService) recordError(ctx context.Context, userID uuid.UUID, connectionID int64, queryErr error) {
	log := &models.ErrorLog{
		UserID:       userID,
		ConnectionID: connectionID,
		ErrorText:    logging.TruncateString(queryErr.Error(), 2000),
	}
	if err := s.errorLogs.Create(ctx, log); err != nil {
		s.logger.Warn("Failed to record error log", zap.Error(err))
	}
}

var _ QueryService = (*queryService)(nil)
