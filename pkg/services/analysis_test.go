package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/llm"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
)

// fakeErrorLogRepo captures created error logs in memory.
type fakeErrorLogRepo struct {
	created []*models.ErrorLog
	err     error
}

func (f *fakeErrorLogRepo) Create(ctx context.Context, log *models.ErrorLog) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, log)
	return nil
}

func (f *fakeErrorLogRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ErrorLog, error) {
	return f.created, nil
}

func TestOptimizeQueryParsesResponse(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "```json\n" +
			`{"optimizedQuery":"SELECT id FROM t","explanation":"drop unused columns",` +
			`"suggestions":["add cluster key"],"estimatedImprovement":"40%"}` +
			"\n```", nil
	}
	svc := NewAnalysisService(client, &fakeErrorLogRepo{}, nopActivity{}, 0.1, zap.NewNop())

	result, err := svc.OptimizeQuery(context.Background(), uuid.New(), "SELECT * FROM t")
	if err != nil {
		t.Fatalf("OptimizeQuery failed: %v", err)
	}

	if result.OptimizedQuery != "SELECT id FROM t" {
		t.Errorf("unexpected optimized query %q", result.OptimizedQuery)
	}
	if len(result.Suggestions) != 1 || result.Suggestions[0] != "add cluster key" {
		t.Errorf("unexpected suggestions %v", result.Suggestions)
	}
	if client.GenerateResponseCalls != 1 {
		t.Errorf("expected 1 LLM call, got %d", client.GenerateResponseCalls)
	}
}

func TestOptimizeQueryRejectsUnparseableResponse(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "I cannot help with that.", nil
	}
	svc := NewAnalysisService(client, &fakeErrorLogRepo{}, nopActivity{}, 0.1, zap.NewNop())

	_, err := svc.OptimizeQuery(context.Background(), uuid.New(), "SELECT 1")
	if err == nil {
		t.Fatal("expected error for unparseable response")
	}
}

func TestOptimizeQueryWithoutClient(t *testing.T) {
	svc := NewAnalysisService(nil, &fakeErrorLogRepo{}, nopActivity{}, 0.1, zap.NewNop())

	_, err := svc.OptimizeQuery(context.Background(), uuid.New(), "SELECT 1")
	if err == nil {
		t.Fatal("expected error when no AI endpoint configured")
	}
}

func TestAnalyzeErrorRecordsDiagnosis(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"rootCause":"missing grant","explanation":"the role lacks USAGE on the warehouse",` +
			`"suggestedFix":"GRANT USAGE ON WAREHOUSE ...","references":[]}`, nil
	}
	repo := &fakeErrorLogRepo{}
	svc := NewAnalysisService(client, repo, nopActivity{}, 0.1, zap.NewNop())

	result, err := svc.AnalyzeError(context.Background(), uuid.New(), "SQL access control error")
	if err != nil {
		t.Fatalf("AnalyzeError failed: %v", err)
	}

	if result.RootCause != "missing grant" {
		t.Errorf("unexpected root cause %q", result.RootCause)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 error log, got %d", len(repo.created))
	}
	if repo.created[0].Analysis != result.Explanation {
		t.Error("expected diagnosis stored alongside the error")
	}
}

func TestAnalyzeErrorPropagatesLLMFailure(t *testing.T) {
	client := llm.NewMockClient()
	client.GenerateResponseFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return "", errors.New("rate limited")
	}
	repo := &fakeErrorLogRepo{}
	svc := NewAnalysisService(client, repo, nopActivity{}, 0.1, zap.NewNop())

	_, err := svc.AnalyzeError(context.Background(), uuid.New(), "boom")
	if err == nil {
		t.Fatal("expected error from LLM failure")
	}
	if len(repo.created) != 0 {
		t.Error("expected no error log recorded on LLM failure")
	}
}
