package auth

import (
	"encoding/json"
	"net/http"
)

// Middleware authenticates requests from their session cookie.
type Middleware struct {
	sessions *SessionManager
}

// NewMiddleware creates auth middleware over a session manager.
func NewMiddleware(sessions *SessionManager) *Middleware {
	return &Middleware{sessions: sessions}
}

// RequireAuth wraps a handler, rejecting requests without a valid session
// and attaching the user ID to the request context otherwise.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.sessions.UserID(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   "unauthorized",
				"message": "Authentication required",
			})
			return
		}

		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}
