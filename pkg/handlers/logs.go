package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/repositories"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
)

// LogsHandler serves error log and activity feed endpoints.
type LogsHandler struct {
	errorLogs repositories.ErrorLogRepository
	activity  services.ActivityRecorder
	logger    *zap.Logger
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(errorLogs repositories.ErrorLogRepository, activity services.ActivityRecorder, logger *zap.Logger) *LogsHandler {
	return &LogsHandler{errorLogs: errorLogs, activity: activity, logger: logger}
}

// RegisterRoutes registers the logs handler's routes on the given mux.
func (h *LogsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/logs/errors", authMiddleware.RequireAuth(h.Errors))
	mux.HandleFunc("GET /api/logs/activity", authMiddleware.RequireAuth(h.Activity))
}

// Errors handles GET /api/logs/errors?limit=N
func (h *LogsHandler) Errors(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	logs, err := h.errorLogs.List(r.Context(), userID, h.limit(r))
	if err != nil {
		h.logger.Error("Failed to list error logs", zap.Error(err))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: logs}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Activity handles GET /api/logs/activity?limit=N
func (h *LogsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	entries, err := h.activity.List(r.Context(), userID, h.limit(r))
	if err != nil {
		h.logger.Error("Failed to list activity", zap.Error(err))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: entries}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *LogsHandler) limit(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}
