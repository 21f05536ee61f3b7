package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/handlers"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/testutil"
)

func orderBody(quantity int) map[string]interface{} {
	return map[string]interface{}{
		"delivery_name":          "Acme BV",
		"delivery_address_line1": "Warehouse Road 5",
		"delivery_postcode":      "2000",
		"delivery_city":          "Antwerp",
		"delivery_country":       "BE",
		"quantity":               quantity,
	}
}

func TestOrderHandler_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	company := testutil.CreateTestCompany(t, db)
	handler := handlers.NewOrderHandler(db)

	r := chi.NewRouter()
	r.With(asTenant(company, models.RoleOwner)).Post("/api/v1/orders", handler.Create)

	t.Run("creates order in the new state", func(t *testing.T) {
		// The company was already reviewed once.
		require.NoError(t, db.Model(&models.Company{}).
			Where("id = ?", company.ID).
			Update("admin_seen", true).Error)

		req := testutil.JSONRequest(t, "POST", "/api/v1/orders", orderBody(3), nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)

		var resp dto.TagOrderDTO
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, 3, resp.Quantity)
		assert.Equal(t, string(models.OrderStatusNew), resp.Status)

		// A fresh order puts the company back into the admin's review queue.
		var after models.Company
		require.NoError(t, db.First(&after, "id = ?", company.ID).Error)
		assert.False(t, after.AdminSeen)
	})

	t.Run("quantity below one is rejected", func(t *testing.T) {
		req := testutil.JSONRequest(t, "POST", "/api/v1/orders", orderBody(0), nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("missing delivery address is rejected", func(t *testing.T) {
		body := orderBody(1)
		delete(body, "delivery_address_line1")
		req := testutil.JSONRequest(t, "POST", "/api/v1/orders", body, nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})
}

func TestOrderHandler_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mine := testutil.CreateTestCompany(t, db)
	other := testutil.CreateTestCompany(t, db)
	handler := handlers.NewOrderHandler(db)

	testutil.CreateTestOrder(t, db, mine.ID, 2)
	testutil.CreateTestOrder(t, db, other.ID, 5)

	r := chi.NewRouter()
	r.With(asTenant(mine, models.RoleViewer)).Get("/api/v1/orders", handler.List)

	req := testutil.JSONRequest(t, "GET", "/api/v1/orders", nil, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	testutil.AssertStatus(t, rr, http.StatusOK)

	var resp []dto.TagOrderDTO
	testutil.ParseJSONResponse(t, rr, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, 2, resp[0].Quantity)
}
