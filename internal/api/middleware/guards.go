package middleware

import (
	"net/http"
	"strings"

	"github.com/punctoo/punctoo/internal/database/models"
)

// Guards compose left to right; the first failing guard short-circuits and
// later guards never run.

// RequireAuthenticated rejects anonymous requests: browsers are redirected
// to the login page, API clients get 401.
func RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetPrincipal(r.Context()); !ok {
			if isWebRequest(r) {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCompany rejects principals without an active company: browsers are
// redirected to signup (the tenant-creation entry point), API clients get 403.
func RequireCompany(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetTenant(r.Context()); !ok {
			if isWebRequest(r) {
				http.Redirect(w, r, "/signup", http.StatusFound)
				return
			}
			http.Error(w, "no active company", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose active role is outside the allowed set.
// Always 403, never a redirect: an authenticated user bounced to the login
// page would loop forever.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant, ok := GetTenant(r.Context())
			if !ok {
				http.Error(w, "no active company", http.StatusForbidden)
				return
			}
			if _, ok := allowed[tenant.Role]; !ok {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// isWebRequest distinguishes browser page loads from API calls.
func isWebRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.HasPrefix(r.URL.Path, "/api/")
}
