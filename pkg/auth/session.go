package auth

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const sessionUserIDField = "user_id"

// SessionManager issues and validates cookie sessions.
type SessionManager struct {
	store      *sessions.CookieStore
	cookieName string
}

// SessionConfig holds cookie session settings.
type SessionConfig struct {
	Secret       string
	CookieName   string
	CookieDomain string
	MaxAge       int
	Secure       bool
}

// NewSessionManager creates a session manager backed by signed cookies.
func NewSessionManager(cfg SessionConfig) (*SessionManager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "snowsarva_session"
	}

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		Domain:   cfg.CookieDomain,
		MaxAge:   cfg.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &SessionManager{store: store, cookieName: cfg.CookieName}, nil
}

// Issue writes a session cookie for the given user.
func (m *SessionManager) Issue(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	session, err := m.store.Get(r, m.cookieName)
	if err != nil {
		// A stale or tampered cookie decodes to an error but still yields a
		// fresh session; proceed with it.
		session, _ = m.store.New(r, m.cookieName)
	}

	session.Values[sessionUserIDField] = userID.String()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear expires the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) error {
	session, err := m.store.Get(r, m.cookieName)
	if err != nil {
		session, _ = m.store.New(r, m.cookieName)
	}

	session.Options.MaxAge = -1
	delete(session.Values, sessionUserIDField)
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// UserID extracts the authenticated user's ID from the request's session
// cookie. Returns false when no valid session is present.
func (m *SessionManager) UserID(r *http.Request) (uuid.UUID, bool) {
	session, err := m.store.Get(r, m.cookieName)
	if err != nil {
		return uuid.Nil, false
	}

	raw, ok := session.Values[sessionUserIDField].(string)
	if !ok {
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}

	return id, true
}
