package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
)

// OptimizeQueryRequest for POST /api/analysis/optimize.
type OptimizeQueryRequest struct {
	Query string `json:"query"`
}

// AnalyzeErrorRequest for POST /api/analysis/error.
type AnalyzeErrorRequest struct {
	Error string `json:"error"`
}

// AnalysisHandler handles LLM analysis HTTP requests.
type AnalysisHandler struct {
	analysis services.AnalysisService
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler.
func NewAnalysisHandler(analysis services.AnalysisService, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis, logger: logger}
}

// RegisterRoutes registers the analysis handler's routes on the given mux.
func (h *AnalysisHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/analysis/optimize", authMiddleware.RequireAuth(h.Optimize))
	mux.HandleFunc("POST /api/analysis/error", authMiddleware.RequireAuth(h.AnalyzeError))
}

// Optimize handles POST /api/analysis/optimize
func (h *AnalysisHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req OptimizeQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.analysis.OptimizeQuery(r.Context(), userID, req.Query)
	if err != nil {
		h.logger.Warn("Query optimization failed",
			zap.String("query", logging.SanitizeQuery(req.Query)),
			zap.String("error", logging.SanitizeError(err)))
		if err := ErrorResponse(w, http.StatusBadGateway, "analysis_failed", "Query optimization failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// AnalyzeError handles POST /api/analysis/error
func (h *AnalysisHandler) AnalyzeError(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req AnalyzeErrorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	result, err := h.analysis.AnalyzeError(r.Context(), userID, req.Error)
	if err != nil {
		h.logger.Warn("Error analysis failed", zap.String("error", logging.SanitizeError(err)))
		if err := ErrorResponse(w, http.StatusBadGateway, "analysis_failed", "Error analysis failed"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: result}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
