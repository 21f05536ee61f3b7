package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/metrics"
)

type contextKey string

const (
	principalKey      contextKey = "principal"
	sessionIDKey      contextKey = "session_id"
	tenantKey         contextKey = "tenant"
	adminPrincipalKey contextKey = "admin_principal"
	adminSessionIDKey contextKey = "admin_session_id"
)

// Principal is the resolved identity of the current request's caller.
// Absence from the context means the request is anonymous.
type Principal struct {
	UserID uuid.UUID
	Email  string
}

// Tenant is the active company and role resolved for a principal.
type Tenant struct {
	Company *models.Company
	Role    models.Role
}

// ResolvePrincipal maps the session cookie to a principal in the request
// context. A missing or dead session is a normal anonymous outcome, never an
// error. Valid sessions are touched (sliding expiry) and the cookie refreshed
// to mirror the new deadline; expired ones are revoked lazily.
func ResolvePrincipal(svc *auth.Service, cookieName string, secure bool, collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			store := svc.Sessions()

			session, err := store.Lookup(r.Context(), cookie.Value)
			if errors.Is(err, auth.ErrSessionNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("session lookup failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if session.Expired(store.Now()) {
				if err := store.Revoke(r.Context(), session.ID); err != nil {
					slog.Error("session revoke failed", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				collector.RecordSessionExpired()
				next.ServeHTTP(w, r)
				return
			}

			expiresAt, err := store.Touch(r.Context(), session.ID)
			if errors.Is(err, auth.ErrSessionNotFound) {
				// Revoked between lookup and touch; treat as anonymous.
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("session touch failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			collector.RecordSessionTouch()

			user, err := svc.GetUserByID(r.Context(), session.UserID)
			if errors.Is(err, auth.ErrUserNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("principal lookup failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     cookieName,
				Value:    session.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
				Expires:  expiresAt,
			})

			ctx := r.Context()
			ctx = context.WithValue(ctx, principalKey, Principal{UserID: user.ID, Email: user.Email})
			ctx = context.WithValue(ctx, sessionIDKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal returns the resolved principal, or ok=false for anonymous
// requests.
func GetPrincipal(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// GetSessionID returns the current request's session identifier, if any.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

// ContextWithPrincipal injects a principal; used by tests.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// ContextWithSessionID injects a session id; used by tests.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}
