package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/llm"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
)

const optimizeSystemMessage = `You are a Snowflake SQL performance expert. You analyze queries and
suggest rewrites that reduce scanned bytes, credits, and execution time.
Respond with JSON only, no markdown, using this exact shape:
{"optimizedQuery": "...", "explanation": "...", "suggestions": ["..."], "estimatedImprovement": "..."}`

const diagnoseSystemMessage = `You are a Snowflake troubleshooting expert. You read raw error messages
and explain the likely root cause and fix in plain language.
Respond with JSON only, no markdown, using this exact shape:
{"rootCause": "...", "explanation": "...", "suggestedFix": "...", "references": ["..."]}`

// QueryOptimization is the structured result of an optimization request.
type QueryOptimization struct {
	OptimizedQuery       string   `json:"optimizedQuery"`
	Explanation          string   `json:"explanation"`
	Suggestions          []string `json:"suggestions"`
	EstimatedImprovement string   `json:"estimatedImprovement"`
}

// ErrorDiagnosis is the structured result of an error analysis request.
type ErrorDiagnosis struct {
	RootCause    string   `json:"rootCause"`
	Explanation  string   `json:"explanation"`
	SuggestedFix string   `json:"suggestedFix"`
	References   []string `json:"references"`
}

// AnalysisService runs LLM-backed query optimization and error diagnosis.
type AnalysisService interface {
	// OptimizeQuery asks the LLM for a faster version of the query.
	OptimizeQuery(ctx context.Context, userID uuid.UUID, queryText string) (*QueryOptimization, error)

	// AnalyzeError asks the LLM to diagnose an error message and records the
	// analysis in the error log.
	AnalyzeError(ctx context.Context, userID uuid.UUID, errorText string) (*ErrorDiagnosis, error)
}

type analysisService struct {
	client      llm.Client
	errorLogs   repositories.ErrorLogRepository
	activity    ActivityRecorder
	temperature float64
	logger      *zap.Logger
}

// NewAnalysisService creates a new analysis service. A nil client means no
// LLM endpoint is configured; requests then fail with a clear error instead
// of a panic.
func NewAnalysisService(
	client llm.Client,
	errorLogs repositories.ErrorLogRepository,
	activity ActivityRecorder,
	temperature float64,
	logger *zap.Logger,
) AnalysisService {
	return &analysisService{
		client:      client,
		errorLogs:   errorLogs,
		activity:    activity,
		temperature: temperature,
		logger:      logger,
	}
}

func (s *analysisService) OptimizeQuery(ctx context.Context, userID uuid.UUID, queryText string) (*QueryOptimization, error) {
	if queryText == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if s.client == nil {
		return nil, fmt.Errorf("no AI endpoint configured")
	}

	prompt := fmt.Sprintf("Optimize this Snowflake query:\n\n```sql\n%s\n```", queryText)

	response, err := s.client.GenerateResponse(ctx, prompt, optimizeSystemMessage, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate optimization: %w", err)
	}

	result, err := llm.ParseJSONResponse[QueryOptimization](response)
	if err != nil {
		s.logger.Warn("Unparseable optimization response",
			zap.String("model", s.client.GetModel()),
			zap.String("response", logging.TruncateString(response, 500)))
		return nil, fmt.Errorf("failed to parse optimization response: %w", err)
	}

	s.activity.Record(ctx, userID, models.ActivityQueryAnalyzed,
		logging.TruncateString(logging.SanitizeQuery(queryText), 200))

	return &result, nil
}

func (s *analysisService) AnalyzeError(ctx context.Context, userID uuid.UUID, errorText string) (*ErrorDiagnosis, error) {
	if errorText == "" {
		return nil, fmt.Errorf("error text is required")
	}
	if s.client == nil {
		return nil, fmt.Errorf("no AI endpoint configured")
	}

	prompt := fmt.Sprintf("Diagnose this Snowflake error:\n\n%s", errorText)

	response, err := s.client.GenerateResponse(ctx, prompt, diagnoseSystemMessage, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate diagnosis: %w", err)
	}

	result, err := llm.ParseJSONResponse[ErrorDiagnosis](response)
	if err != nil {
		s.logger.Warn("Unparseable diagnosis response",
			zap.String("model", s.client.GetModel()),
			zap.String("response", logging.TruncateString(response, 500)))
		return nil, fmt.Errorf("failed to parse diagnosis response: %w", err)
	}

	// Keep the diagnosis alongside the raw error for the logs view.
	log := &models.ErrorLog{
		UserID:    userID,
		ErrorText: logging.TruncateString(errorText, 2000),
		Analysis:  result.Explanation,
	}
	if err := s.errorLogs.Create(ctx, log); err != nil {
		s.logger.Warn("Failed to record analyzed error", zap.Error(err))
	}

	s.activity.Record(ctx, userID, models.ActivityErrorAnalyzed,
		logging.TruncateString(errorText, 200))

	return &result, nil
}

var _ AnalysisService = (*analysisService)(nil)
