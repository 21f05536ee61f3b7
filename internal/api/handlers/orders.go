package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

type OrderHandler struct {
	db *gorm.DB
}

func NewOrderHandler(db *gorm.DB) *OrderHandler {
	return &OrderHandler{db: db}
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var orders []models.TagOrder
	err := h.db.WithContext(r.Context()).
		Where("company_id = ?", tenant.Company.ID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list orders"})
		return
	}

	out := make([]dto.TagOrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, orderDTO(&orders[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var req dto.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	order := models.TagOrder{
		CompanyID:            tenant.Company.ID,
		DeliveryName:         strings.TrimSpace(req.DeliveryName),
		DeliveryAddressLine1: strings.TrimSpace(req.DeliveryAddressLine1),
		DeliveryAddressLine2: strings.TrimSpace(req.DeliveryAddressLine2),
		DeliveryPostcode:     strings.TrimSpace(req.DeliveryPostcode),
		DeliveryCity:         strings.TrimSpace(req.DeliveryCity),
		DeliveryCountry:      strings.TrimSpace(req.DeliveryCountry),
		Quantity:             req.Quantity,
		Status:               models.OrderStatusNew,
		AdminSeen:            false,
	}

	// The order and the company's "new" flag move together so the admin
	// queue can never miss a half-created order.
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Model(&models.Company{}).
			Where("id = ?", order.CompanyID).
			Update("admin_seen", false).Error
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create order"})
		return
	}

	writeJSON(w, http.StatusCreated, orderDTO(&order))
}

func orderDTO(o *models.TagOrder) dto.TagOrderDTO {
	return dto.TagOrderDTO{
		ID:        o.ID.String(),
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}
