package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/testutil"
)

const adminCookieName = "admin_session"

func TestResolveAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	adminStore := auth.NewAdminSessionStore(db, time.Hour)
	adminSvc := auth.NewAdminService(db, adminStore)

	var principal middleware.AdminPrincipal
	var resolved bool
	handler := middleware.ResolveAdmin(adminSvc, adminCookieName, false)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, resolved = middleware.GetAdminPrincipal(r.Context())
			w.WriteHeader(http.StatusOK)
		}),
	)

	t.Run("valid admin session resolves", func(t *testing.T) {
		admin := testutil.CreateTestAdmin(t, db, "adminsecret123")
		session, err := adminStore.Create(context.Background(), admin.ID)
		require.NoError(t, err)

		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, testutil.SessionCookie(adminCookieName, session.ID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.True(t, resolved)
		assert.Equal(t, admin.ID, principal.AdminID)
		assert.Equal(t, admin.Email, principal.Email)
	})

	t.Run("tenant session is worthless on the admin track", func(t *testing.T) {
		resolved = false

		tenantStore := auth.NewSessionStore(db, time.Hour)
		company := testutil.CreateTestCompany(t, db)
		user := testutil.CreateTestUser(t, db, company, models.RoleOwner)
		tenantSession := testutil.CreateTestSession(t, tenantStore, user.ID)

		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, testutil.SessionCookie(adminCookieName, tenantSession.ID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.False(t, resolved)
	})

	t.Run("expired admin session is revoked", func(t *testing.T) {
		resolved = false

		expiredStore := auth.NewAdminSessionStore(db, -time.Minute)
		admin := testutil.CreateTestAdmin(t, db, "adminsecret123")
		session, err := expiredStore.Create(context.Background(), admin.ID)
		require.NoError(t, err)

		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, testutil.SessionCookie(adminCookieName, session.ID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.False(t, resolved)
		_, err = adminStore.Lookup(context.Background(), session.ID)
		assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	})
}

func TestRequireAdmin(t *testing.T) {
	guard := middleware.RequireAdmin(okHandler())

	t.Run("anonymous API request gets 401", func(t *testing.T) {
		rr := httptest.NewRecorder()
		guard.ServeHTTP(rr, apiRequest("/api/v1/admin/dashboard"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("anonymous browser request redirects to the admin login", func(t *testing.T) {
		rr := httptest.NewRecorder()
		guard.ServeHTTP(rr, browserRequest("/admin/dashboard"))
		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/admin/login", rr.Header().Get("Location"))
	})

	t.Run("tenant principal does not satisfy the admin guard", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := withTenant(withPrincipal(apiRequest("/api/v1/admin/dashboard")), models.RoleOwner)
		guard.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("admin principal passes", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := apiRequest("/api/v1/admin/dashboard")
		ctx := middleware.ContextWithAdminPrincipal(req.Context(), middleware.AdminPrincipal{Email: "ops@example.com"})
		guard.ServeHTTP(rr, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
