package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/auth"
)

// AdminPrincipal is the resolved identity on the admin track. It is a
// distinct type from Principal on purpose: the two tracks must never be
// interchangeable, not even by accident through a shared context key.
type AdminPrincipal struct {
	AdminID uuid.UUID
	Email   string
}

// ResolveAdmin is the admin-track principal resolver. Same algorithm as
// ResolvePrincipal, instantiated against the admin session store, cookie and
// context key.
func ResolveAdmin(svc *auth.AdminService, cookieName string, secure bool) func(http.Handler) http.Handler {
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
				slog.Error("admin session lookup failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			if session.Expired(store.Now()) {
				if err := store.Revoke(r.Context(), session.ID); err != nil {
					slog.Error("admin session revoke failed", "error", err)
					http.Error(w, "internal server error", http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			expiresAt, err := store.Touch(r.Context(), session.ID)
			if errors.Is(err, auth.ErrSessionNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("admin session touch failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}

			admin, err := svc.GetAdminByID(r.Context(), session.AdminID)
			if errors.Is(err, auth.ErrAdminNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slog.Error("admin principal lookup failed", "error", err)
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
			ctx = context.WithValue(ctx, adminPrincipalKey, AdminPrincipal{AdminID: admin.ID, Email: admin.Email})
			ctx = context.WithValue(ctx, adminSessionIDKey, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests without a resolved admin principal. The
// admin track has no role granularity.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetAdminPrincipal(r.Context()); !ok {
			if isWebRequest(r) {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetAdminPrincipal(ctx context.Context) (AdminPrincipal, bool) {
	p, ok := ctx.Value(adminPrincipalKey).(AdminPrincipal)
	return p, ok
}

func GetAdminSessionID(ctx context.Context) string {
	id, _ := ctx.Value(adminSessionIDKey).(string)
	return id
}

// ContextWithAdminPrincipal injects an admin principal; used by tests.
func ContextWithAdminPrincipal(ctx context.Context, p AdminPrincipal) context.Context {
	return context.WithValue(ctx, adminPrincipalKey, p)
}

// ContextWithAdminSessionID injects an admin session id; used by tests.
func ContextWithAdminSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, adminSessionIDKey, id)
}
