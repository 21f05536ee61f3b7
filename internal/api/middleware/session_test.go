package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/testutil"
)

const testCookieName = "session"

func setupResolver(t *testing.T) (*gorm.DB, *auth.Service, *auth.SessionStore) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := auth.NewSessionStore(db, time.Hour)
	svc := auth.NewService(db, store, nil)
	return db, svc, store
}

// captureHandler records the resolved context for assertions.
func captureHandler(principal *middleware.Principal, resolved *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := middleware.GetPrincipal(r.Context()); ok {
			*principal = p
			*resolved = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestResolvePrincipal_NoCookie(t *testing.T) {
	_, svc, _ := setupResolver(t)

	var principal middleware.Principal
	var resolved bool
	handler := middleware.ResolvePrincipal(svc, testCookieName, false, nil)(captureHandler(&principal, &resolved))

	req := httptest.NewRequest("GET", "/api/v1/me", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.False(t, resolved, "anonymous request must not resolve a principal")
}

func TestResolvePrincipal_UnknownSession(t *testing.T) {
	_, svc, _ := setupResolver(t)

	var principal middleware.Principal
	var resolved bool
	handler := middleware.ResolvePrincipal(svc, testCookieName, false, nil)(captureHandler(&principal, &resolved))

	req := testutil.JSONRequest(t, "GET", "/api/v1/me", nil, testutil.SessionCookie(testCookieName, "bogus-token"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.False(t, resolved)
}

func TestResolvePrincipal_ValidSession(t *testing.T) {
	db, svc, store := setupResolver(t)

	company := testutil.CreateTestCompany(t, db)
	user := testutil.CreateTestUser(t, db, company, models.RoleOwner)
	session := testutil.CreateTestSession(t, store, user.ID)

	var principal middleware.Principal
	var resolved bool
	handler := middleware.ResolvePrincipal(svc, testCookieName, false, nil)(captureHandler(&principal, &resolved))

	req := testutil.JSONRequest(t, "GET", "/api/v1/me", nil, testutil.SessionCookie(testCookieName, session.ID))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	require.True(t, resolved)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, user.Email, principal.Email)

	// The response carries a refreshed cookie mirroring the server expiry.
	var refreshed *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == testCookieName {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed)
	assert.Equal(t, session.ID, refreshed.Value)
	assert.True(t, refreshed.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, refreshed.SameSite)
	assert.False(t, refreshed.Expires.IsZero())
}

func TestResolvePrincipal_SlidesExpiry(t *testing.T) {
	db, svc, store := setupResolver(t)

	company := testutil.CreateTestCompany(t, db)
	user := testutil.CreateTestUser(t, db, company, models.RoleOwner)
	session := testutil.CreateTestSession(t, store, user.ID)

	// Give the clock room so the slid deadline is strictly later.
	time.Sleep(10 * time.Millisecond)

	var principal middleware.Principal
	var resolved bool
	handler := middleware.ResolvePrincipal(svc, testCookieName, false, nil)(captureHandler(&principal, &resolved))

	req := testutil.JSONRequest(t, "GET", "/api/v1/me", nil, testutil.SessionCookie(testCookieName, session.ID))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.True(t, resolved)
	after, err := store.Lookup(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.After(session.ExpiresAt), "expiry must slide forward on use")
}

func TestResolvePrincipal_ExpiredSessionIsRevoked(t *testing.T) {
	db, svc, _ := setupResolver(t)

	// A dedicated store with a negative window issues already-dead sessions.
	expiredStore := auth.NewSessionStore(db, -time.Minute)
	company := testutil.CreateTestCompany(t, db)
	user := testutil.CreateTestUser(t, db, company, models.RoleOwner)
	session := testutil.CreateTestSession(t, expiredStore, user.ID)

	var principal middleware.Principal
	var resolved bool
	handler := middleware.ResolvePrincipal(svc, testCookieName, false, nil)(captureHandler(&principal, &resolved))

	req := testutil.JSONRequest(t, "GET", "/api/v1/me", nil, testutil.SessionCookie(testCookieName, session.ID))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	assert.False(t, resolved, "expired session must resolve to anonymous")

	// The dead record is gone, not just ignored.
	_, err := expiredStore.Lookup(context.Background(), session.ID)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestResolveTenant(t *testing.T) {
	db, svc, store := setupResolver(t)

	resolve := middleware.ResolvePrincipal(svc, testCookieName, false, nil)
	tenantResolve := middleware.ResolveTenant(svc)

	var tenant middleware.Tenant
	var hasTenant bool
	handler := resolve(tenantResolve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenant, hasTenant = middleware.GetTenant(r.Context())
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("member resolves company and role", func(t *testing.T) {
		company := testutil.CreateTestCompany(t, db)
		user := testutil.CreateTestUser(t, db, company, models.RoleManager)
		session := testutil.CreateTestSession(t, store, user.ID)

		req := testutil.JSONRequest(t, "GET", "/api/v1/employees", nil, testutil.SessionCookie(testCookieName, session.ID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		require.True(t, hasTenant)
		assert.Equal(t, company.ID, tenant.Company.ID)
		assert.Equal(t, models.RoleManager, tenant.Role)
	})

	t.Run("principal without membership has no tenant", func(t *testing.T) {
		hasTenant = false
		user := testutil.CreateTestUser(t, db, nil, "")
		session := testutil.CreateTestSession(t, store, user.ID)

		req := testutil.JSONRequest(t, "GET", "/api/v1/employees", nil, testutil.SessionCookie(testCookieName, session.ID))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.False(t, hasTenant)
	})

	t.Run("anonymous request has no tenant", func(t *testing.T) {
		hasTenant = false
		req := testutil.JSONRequest(t, "GET", "/api/v1/employees", nil, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.False(t, hasTenant)
	})
}
