package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/handlers"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/testutil"
)

const adminCookieName = "admin_session"

func setupAdminRouter(t *testing.T) (*chi.Mux, *gorm.DB, *auth.AdminService) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	store := auth.NewAdminSessionStore(db, time.Hour)
	svc := auth.NewAdminService(db, store)
	handler := handlers.NewAdminHandler(db, svc, adminCookieName, false)

	r := chi.NewRouter()
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.ResolveAdmin(svc, adminCookieName, false))

		r.Post("/login", handler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/logout", handler.Logout)
			r.Get("/dashboard", handler.Dashboard)
			r.Get("/customers", handler.ListCustomers)
			r.Get("/customers/{id}", handler.GetCustomer)
			r.Post("/customers/{id}/seen", handler.MarkCustomerSeen)
			r.Post("/orders/{id}/done", handler.MarkOrderDone)
		})
	})

	return r, db, svc
}

func adminLogin(t *testing.T, r *chi.Mux, svc *auth.AdminService) *http.Cookie {
	t.Helper()

	require.NoError(t, svc.SeedBootstrapAdmin(testutil.TestContext(t), "ops@example.com", "adminsecret123"))

	body := map[string]string{"email": "ops@example.com", "password": "adminsecret123"}
	req := testutil.JSONRequest(t, "POST", "/api/v1/admin/login", body, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, "admin login failed: %s", rr.Body.String())

	for _, c := range rr.Result().Cookies() {
		if c.Name == adminCookieName {
			return c
		}
	}
	t.Fatal("no admin session cookie in login response")
	return nil
}

func TestAdminHandler_Login(t *testing.T) {
	r, db, svc := setupAdminRouter(t)

	t.Run("valid credentials set the admin cookie", func(t *testing.T) {
		cookie := adminLogin(t, r, svc)
		assert.NotEmpty(t, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("wrong password", func(t *testing.T) {
		body := map[string]string{"email": "ops@example.com", "password": "nope"}
		req := testutil.JSONRequest(t, "POST", "/api/v1/admin/login", body, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("console rejects anonymous access", func(t *testing.T) {
		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})

	t.Run("tenant session cookie does not open the console", func(t *testing.T) {
		tenantStore := auth.NewSessionStore(db, time.Hour)
		company := testutil.CreateTestCompany(t, db)
		user := testutil.CreateTestUser(t, db, company, models.RoleOwner)
		session := testutil.CreateTestSession(t, tenantStore, user.ID)

		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, testutil.SessionCookie(adminCookieName, session.ID))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestAdminHandler_Logout(t *testing.T) {
	r, _, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	req := testutil.JSONRequest(t, "POST", "/api/v1/admin/logout", nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// The revoked session no longer opens the console.
	req = testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, cookie)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestAdminHandler_Dashboard(t *testing.T) {
	r, db, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	unseen := testutil.CreateTestCompany(t, db)
	seen := testutil.CreateTestCompany(t, db)
	require.NoError(t, db.Model(&models.Company{}).
		Where("id = ?", seen.ID).
		Update("admin_seen", true).Error)

	newOrder := testutil.CreateTestOrder(t, db, unseen.ID, 2)
	doneOrder := testutil.CreateTestOrder(t, db, seen.ID, 1)
	require.NoError(t, db.Model(&models.TagOrder{}).
		Where("id = ?", doneOrder.ID).
		Updates(map[string]interface{}{"status": models.OrderStatusDone, "admin_seen": true}).Error)

	req := testutil.JSONRequest(t, "GET", "/api/v1/admin/dashboard", nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.AdminDashboardResponse
	testutil.ParseJSONResponse(t, rr, &resp)

	require.Len(t, resp.NewCustomers, 1)
	assert.Equal(t, unseen.ID.String(), resp.NewCustomers[0].ID)
	require.Len(t, resp.NewOrders, 1)
	assert.Equal(t, newOrder.ID.String(), resp.NewOrders[0].ID)
}

func TestAdminHandler_MarkCustomerSeen(t *testing.T) {
	r, db, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	first := testutil.CreateTestCompany(t, db)
	second := testutil.CreateTestCompany(t, db)

	req := testutil.JSONRequest(t, "POST", "/api/v1/admin/customers/"+first.ID.String()+"/seen", nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	// Only the targeted row is cleared; the other stays queued.
	var after models.Company
	require.NoError(t, db.First(&after, "id = ?", first.ID).Error)
	assert.True(t, after.AdminSeen)
	var untouched models.Company
	require.NoError(t, db.First(&untouched, "id = ?", second.ID).Error)
	assert.False(t, untouched.AdminSeen)
}

func TestAdminHandler_MarkOrderDone(t *testing.T) {
	r, db, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	company := testutil.CreateTestCompany(t, db)
	order := testutil.CreateTestOrder(t, db, company.ID, 4)
	other := testutil.CreateTestOrder(t, db, company.ID, 1)

	req := testutil.JSONRequest(t, "POST", "/api/v1/admin/orders/"+order.ID.String()+"/done", nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	testutil.AssertStatus(t, rr, http.StatusOK)

	var after models.TagOrder
	require.NoError(t, db.First(&after, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusDone, after.Status)
	assert.True(t, after.AdminSeen)

	var untouched models.TagOrder
	require.NoError(t, db.First(&untouched, "id = ?", other.ID).Error)
	assert.Equal(t, models.OrderStatusNew, untouched.Status)
	assert.False(t, untouched.AdminSeen)

	t.Run("unknown order", func(t *testing.T) {
		req := testutil.JSONRequest(t, "POST", "/api/v1/admin/orders/00000000-0000-0000-0000-000000000000/done", nil, cookie)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAdminHandler_GetCustomer(t *testing.T) {
	r, db, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	company := testutil.CreateTestCompany(t, db)
	testutil.CreateTestEmployee(t, db, company.ID, "Alice", "AAAAAA")
	createTestTag(t, db, company.ID, "Entrance", "AAAABBBB")
	testutil.CreateTestOrder(t, db, company.ID, 2)

	req := testutil.JSONRequest(t, "GET", "/api/v1/admin/customers/"+company.ID.String(), nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.CustomerDetailResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, company.ID.String(), resp.Customer.ID)
	assert.Len(t, resp.Employees, 1)
	assert.Len(t, resp.Tags, 1)
	assert.Len(t, resp.Orders, 1)

	t.Run("unknown customer", func(t *testing.T) {
		req := testutil.JSONRequest(t, "GET", "/api/v1/admin/customers/00000000-0000-0000-0000-000000000000", nil, cookie)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		testutil.AssertStatus(t, rr, http.StatusNotFound)
	})
}

func TestAdminHandler_ListCustomers(t *testing.T) {
	r, db, svc := setupAdminRouter(t)
	cookie := adminLogin(t, r, svc)

	for i := 0; i < 3; i++ {
		testutil.CreateTestCompany(t, db)
	}

	req := testutil.JSONRequest(t, "GET", "/api/v1/admin/customers?page=1&per_page=2", nil, cookie)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp dto.PaginatedResponse
	testutil.ParseJSONResponse(t, rr, &resp)
	assert.Equal(t, int64(3), resp.Total)
	assert.Equal(t, 2, resp.PerPage)
	assert.Equal(t, 2, resp.TotalPages)
}
