package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
)

// PipelineRequest for create and update bodies.
type PipelineRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Source      string     `json:"source"`
	Target      string     `json:"target"`
	Schedule    string     `json:"schedule"`
	Status      string     `json:"status"`
	LastRunAt   *time.Time `json:"lastRunAt"`
}

func (r *PipelineRequest) toInput() services.PipelineInput {
	return services.PipelineInput{
		Name:        r.Name,
		Description: r.Description,
		Source:      r.Source,
		Target:      r.Target,
		Schedule:    r.Schedule,
		Status:      r.Status,
		LastRunAt:   r.LastRunAt,
	}
}

// PipelinesHandler handles pipeline HTTP requests.
type PipelinesHandler struct {
	pipelines services.PipelineService
	logger    *zap.Logger
}

// NewPipelinesHandler creates a new pipelines handler.
func NewPipelinesHandler(pipelines services.PipelineService, logger *zap.Logger) *PipelinesHandler {
	return &PipelinesHandler{pipelines: pipelines, logger: logger}
}

// RegisterRoutes registers the pipelines handler's routes on the given mux.
func (h *PipelinesHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/pipelines", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/pipelines", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("GET /api/pipelines/{id}", authMiddleware.RequireAuth(h.Get))
	mux.HandleFunc("PUT /api/pipelines/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/pipelines/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/pipelines
func (h *PipelinesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	pipelines, err := h.pipelines.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list pipelines", zap.Error(err))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: pipelines}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/pipelines/{id}
func (h *PipelinesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	pipeline, err := h.pipelines.Get(r.Context(), userID, id)
	if err != nil {
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: pipeline}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/pipelines
func (h *PipelinesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	pipeline, err := h.pipelines.Create(r.Context(), userID, req.toInput())
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", err.Error()); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: pipeline}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/pipelines/{id}
func (h *PipelinesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req PipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	pipeline, err := h.pipelines.Update(r.Context(), userID, id, req.toInput())
	if err != nil {
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: pipeline}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/pipelines/{id}
func (h *PipelinesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.pipelines.Delete(r.Context(), userID, id); err != nil {
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Pipeline deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *PipelinesHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid pipeline ID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}
