package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	csrfTokenLength = 32
	csrfHeaderName  = "X-CSRF-Token"
	csrfFormField   = "csrf_token"
	csrfTokenExpiry = 24 * time.Hour

	// Each resolver track gets its own cookie so a tenant session and an
	// admin session in the same browser never clobber each other's token.
	SessionCSRFCookie = "csrf_token"
	AdminCSRFCookie   = "admin_csrf_token"
)

// CSRFToken represents a CSRF token with expiry
type CSRFToken struct {
	Token     string
	ExpiresAt time.Time
}

// CSRFStore stores CSRF tokens keyed by session id (in-memory for simplicity)
type CSRFStore struct {
	tokens map[string]CSRFToken
	mu     sync.RWMutex
}

// NewCSRFStore creates a new CSRF token store
func NewCSRFStore() *CSRFStore {
	store := &CSRFStore{
		tokens: make(map[string]CSRFToken),
	}

	// Start cleanup goroutine
	go store.cleanup()

	return store
}

// cleanup removes expired tokens periodically
func (s *CSRFStore) cleanup() {
	ticker := time.NewTicker(time.Hour)
	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for sessionID, token := range s.tokens {
			if now.After(token.ExpiresAt) {
				delete(s.tokens, sessionID)
			}
		}
		s.mu.Unlock()
	}
}

// GetOrCreate returns the session's current token, minting one when the
// session has none or its token expired.
func (s *CSRFStore) GetOrCreate(sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, exists := s.tokens[sessionID]; exists {
		if time.Now().Before(token.ExpiresAt) {
			return token.Token, nil
		}
	}

	tokenBytes := make([]byte, csrfTokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("generating CSRF token: %w", err)
	}

	token := base64.URLEncoding.EncodeToString(tokenBytes)

	s.tokens[sessionID] = CSRFToken{
		Token:     token,
		ExpiresAt: time.Now().Add(csrfTokenExpiry),
	}

	return token, nil
}

// Validate checks if the provided token is valid for the session
func (s *CSRFStore) Validate(sessionID, providedToken string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, exists := s.tokens[sessionID]
	if !exists {
		return false
	}

	if time.Now().After(token.ExpiresAt) {
		return false
	}

	// Constant-time comparison to prevent timing attacks
	return subtle.ConstantTimeCompare([]byte(token.Token), []byte(providedToken)) == 1
}

// CSRF guards cookie-authenticated state-changing requests. Tokens are keyed
// by the resolved session id, so the middleware must run after the matching
// principal resolver. getSessionID selects the track's id from the context;
// cookieName is the track's token cookie.
func CSRF(store *CSRFStore, cookieName string, getSessionID func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Safe methods only seed the token cookie.
			if r.Method == http.MethodGet ||
				r.Method == http.MethodHead ||
				r.Method == http.MethodOptions ||
				r.Method == http.MethodTrace {
				ensureCSRFCookie(w, r, store, cookieName, getSessionID)
				next.ServeHTTP(w, r)
				return
			}

			sessionID := getSessionID(r)
			if sessionID == "" {
				http.Error(w, "session required", http.StatusForbidden)
				return
			}

			csrfToken := r.Header.Get(csrfHeaderName)
			if csrfToken == "" {
				csrfToken = r.FormValue(csrfFormField)
			}

			if csrfToken == "" {
				http.Error(w, "CSRF token missing", http.StatusForbidden)
				return
			}

			if !store.Validate(sessionID, csrfToken) {
				http.Error(w, "invalid CSRF token", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SessionCSRFKey keys CSRF tokens by the tenant session.
func SessionCSRFKey(r *http.Request) string {
	return GetSessionID(r.Context())
}

// AdminCSRFKey keys CSRF tokens by the admin session.
func AdminCSRFKey(r *http.Request) string {
	return GetAdminSessionID(r.Context())
}

// ensureCSRFCookie keeps the token cookie in step with the store. The cookie
// outlives sessions, so after a re-login the browser still carries the old
// session's token; matching against the current session's token reseeds it
// instead of leaving writes stuck on a stale value.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request, store *CSRFStore, cookieName string, getSessionID func(r *http.Request) string) {
	sessionID := getSessionID(r)
	if sessionID == "" {
		return
	}

	token, err := store.GetOrCreate(sessionID)
	if err != nil {
		return
	}

	if cookie, cerr := r.Cookie(cookieName); cerr == nil && cookie.Value == token {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: false, // JavaScript needs to read this
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(csrfTokenExpiry.Seconds()),
	})
}
