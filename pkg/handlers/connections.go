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

// ConnectionRequest for create, update, and test bodies. IsActive is a
// pointer so an update can distinguish "activate" from "no change".
type ConnectionRequest struct {
	Name      string `json:"name"`
	Account   string `json:"account"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	Warehouse string `json:"warehouse"`
	IsActive  *bool  `json:"isActive"`
}

func (r *ConnectionRequest) toInput() services.ConnectionInput {
	return services.ConnectionInput{
		Name:      r.Name,
		Account:   r.Account,
		Username:  r.Username,
		Password:  r.Password,
		Role:      r.Role,
		Warehouse: r.Warehouse,
	}
}

// TestConnectionResponse for connection test result.
type TestConnectionResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConnectionsHandler handles warehouse connection HTTP requests.
type ConnectionsHandler struct {
	connections services.ConnectionService
	logger      *zap.Logger
}

// NewConnectionsHandler creates a new connections handler.
func NewConnectionsHandler(connections services.ConnectionService, logger *zap.Logger) *ConnectionsHandler {
	return &ConnectionsHandler{connections: connections, logger: logger}
}

// RegisterRoutes registers the connections handler's routes on the given mux.
func (h *ConnectionsHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware *auth.Middleware) {
	mux.HandleFunc("GET /api/connections", authMiddleware.RequireAuth(h.List))
	mux.HandleFunc("POST /api/connections", authMiddleware.RequireAuth(h.Create))
	mux.HandleFunc("POST /api/connections/test", authMiddleware.RequireAuth(h.Test))
	mux.HandleFunc("PUT /api/connections/{id}", authMiddleware.RequireAuth(h.Update))
	mux.HandleFunc("DELETE /api/connections/{id}", authMiddleware.RequireAuth(h.Delete))
}

// List handles GET /api/connections
// Returns the user's connections in stable server order.
func (h *ConnectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	connections, err := h.connections.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list connections",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: connections}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Create handles POST /api/connections
// Tests the credentials live, then persists the connection.
func (h *ConnectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	conn, err := h.connections.Create(r.Context(), userID, req.toInput())
	if err != nil {
		h.logger.Warn("Failed to create connection",
			zap.String("user_id", userID.String()),
			zap.String("error", logging.SanitizeError(err)))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusCreated, ApiResponse{Success: true, Data: conn}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Update handles PUT /api/connections/{id}
// A body of {"isActive": true} switches the active connection; any other
// body updates settings or credentials.
func (h *ConnectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if req.IsActive != nil && *req.IsActive {
		conn, err := h.connections.Activate(r.Context(), userID, id)
		if err != nil {
			h.logger.Warn("Failed to activate connection",
				zap.String("user_id", userID.String()),
				zap.Int64("connection_id", id),
				zap.Error(err))
			if err := serviceError(w, err); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}

		if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: conn}); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	conn, err := h.connections.Update(r.Context(), userID, id, req.toInput())
	if err != nil {
		h.logger.Warn("Failed to update connection",
			zap.String("user_id", userID.String()),
			zap.Int64("connection_id", id),
			zap.String("error", logging.SanitizeError(err)))
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: conn}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/connections/{id}
func (h *ConnectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.connections.Delete(r.Context(), userID, id); err != nil {
		if err := serviceError(w, err); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Connection deleted"}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Test handles POST /api/connections/test
// Checks credentials against the live warehouse without persisting anything.
func (h *ConnectionsHandler) Test(w http.ResponseWriter, r *http.Request) {
	var req ConnectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	if err := h.connections.Test(r.Context(), req.toInput()); err != nil {
		// A failed test is a successful request with a negative result.
		response := TestConnectionResponse{
			Success: false,
			Message: logging.SanitizeError(err),
		}
		if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
			h.logger.Error("Failed to write response", zap.Error(err))
		}
		return
	}

	response := TestConnectionResponse{Success: true, Message: "Connection successful"}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ConnectionsHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid connection ID"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return 0, false
	}
	return id, true
}
