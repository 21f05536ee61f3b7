package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/punctoo/punctoo/internal/auth"
)

// ResolveTenant attaches the principal's active company and role to the
// request context. Read-only, no side effects; anonymous requests and
// principals without a membership pass through untouched.
func ResolveTenant(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			membership, err := svc.ActiveMembership(r.Context(), principal.UserID)
			if err != nil {
				slog.Error("tenant resolution failed", "error", err)
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			if membership == nil || membership.Company == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), tenantKey, Tenant{
				Company: membership.Company,
				Role:    membership.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetTenant returns the resolved tenant, or ok=false when the principal has
// no active company.
func GetTenant(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantKey).(Tenant)
	return t, ok
}

// ContextWithTenant injects a tenant; used by tests.
func ContextWithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantKey, t)
}
