package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/logging"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
)

// DashboardHandler serves the cost, performance, and storage panels.
type DashboardHandler struct {
	dashboard services.DashboardService
	logger    *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboard services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/dashboard/costs", authMiddleware.RequireAuth(h.Costs))
	mux.HandleFunc("GET /api/dashboard/performance", authMiddleware.RequireAuth(h.Performance))
	mux.HandleFunc("GET /api/dashboard/storage", authMiddleware.RequireAuth(h.Storage))
}

// Costs handles GET /api/dashboard/costs
func (h *DashboardHandler) Costs(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.dashboard.Costs(r.Context(), userID)
	if err != nil {
		h.panelError(w, "costs", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rows}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Performance handles GET /api/dashboard/performance
func (h *DashboardHandler) Performance(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.dashboard.Performance(r.Context(), userID)
	if err != nil {
		h.panelError(w, "performance", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rows}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Storage handles GET /api/dashboard/storage
func (h *DashboardHandler) Storage(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.dashboard.Storage(r.Context(), userID)
	if err != nil {
		h.panelError(w, "storage", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: rows}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *DashboardHandler) panelError(w http.ResponseWriter, panel string, err error) {
	h.logger.Warn("Dashboard panel failed",
		zap.String("panel", panel),
		zap.String("error", logging.SanitizeError(err)))
	if err := serviceError(w, err); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
