package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
)

// ExecuteQueryRequest for the query console. Params are positional bind
// values for '?' placeholders in the query text.
type ExecuteQueryRequest struct {
	Query  string `json:"query"`
	Params []any  `json:"params,omitempty"`
	Limit  int    `json:"limit"`
}

// QueriesHandler handles query console HTTP requests.
type QueriesHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueriesHandler creates a new queries handler.
func NewQueriesHandler(queries services.QueryService, logger *zap.Logger) *QueriesHandler {
	return &QueriesHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the queries handler's routes on the given mux.
func (h *QueriesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("POST /api/queries/execute", authMiddleware.RequireAuth(h.Execute))
	mux.HandleFunc("GET /api/queries/history", authMiddleware.RequireAuth(h.History))
}

// Execute handles POST /api/queries/execute
func (h *QueriesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req ExecuteQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	execution, err := h.queries.Execute(r.Context(), userID, req.Query, req.Params, req.Limit)
	if err != nil {
		h.logger.Warn("Query execution failed",
			zap.String("user_id", userID.String()),
			zap.String("query", logging.SanitizeQuery(req.Query)),
			zap.String("error", logging.SanitizeError(err)))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: execution}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// History handles GET /api/queries/history?limit=N
func (h *QueriesHandler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid limit"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		limit = parsed
	}

	records, err := h.queries.History(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Failed to list query history", zap.Error(err))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: records}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
