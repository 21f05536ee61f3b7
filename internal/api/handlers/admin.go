package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

// newQueueLimit caps the admin dashboard's unseen queues.
const newQueueLimit = 50

type AdminHandler struct {
	db           *gorm.DB
	adminService *auth.AdminService
	cookieName   string
	secure       bool
}

func NewAdminHandler(db *gorm.DB, adminService *auth.AdminService, cookieName string, secure bool) *AdminHandler {
	return &AdminHandler{db: db, adminService: adminService, cookieName: cookieName, secure: secure}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.adminService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		return
	}

	setSessionCookie(w, h.cookieName, result.Session.ID, result.Session.ExpiresAt, h.secure)

	writeJSON(w, http.StatusOK, dto.AdminDTO{
		ID:    result.Admin.ID.String(),
		Email: result.Admin.Email,
	})
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := middleware.GetAdminSessionID(r.Context()); sessionID != "" {
		if err := h.adminService.Logout(r.Context(), sessionID); err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Logout failed"})
			return
		}
	}

	clearSessionCookie(w, h.cookieName, h.secure)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Dashboard lists companies and orders not yet seen by an operator.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	var companies []models.Company
	err := h.db.WithContext(r.Context()).
		Where("admin_seen = ?", false).
		Order("subscription_start_date DESC, name ASC").
		Limit(newQueueLimit).
		Find(&companies).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	var orders []models.TagOrder
	err = h.db.WithContext(r.Context()).
		Where("admin_seen = ?", false).
		Order("created_at DESC").
		Limit(newQueueLimit).
		Find(&orders).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load dashboard"})
		return
	}

	resp := dto.AdminDashboardResponse{
		NewCustomers: make([]dto.CustomerSummaryDTO, 0, len(companies)),
		NewOrders:    make([]dto.AdminOrderDTO, 0, len(orders)),
	}
	for i := range companies {
		resp.NewCustomers = append(resp.NewCustomers, customerSummaryDTO(&companies[i]))
	}
	for i := range orders {
		resp.NewOrders = append(resp.NewOrders, adminOrderDTO(&orders[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	params := dto.PaginationParams{
		Page:    atoiOrZero(r.URL.Query().Get("page")),
		PerPage: atoiOrZero(r.URL.Query().Get("per_page")),
	}
	params.Normalize()

	var total int64
	if err := h.db.WithContext(r.Context()).Model(&models.Company{}).Count(&total).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list customers"})
		return
	}

	var companies []models.Company
	err := h.db.WithContext(r.Context()).
		Order("subscription_start_date DESC, name ASC").
		Limit(params.PerPage).
		Offset(params.Offset()).
		Find(&companies).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list customers"})
		return
	}

	out := make([]dto.CustomerSummaryDTO, 0, len(companies))
	for i := range companies {
		out = append(out, customerSummaryDTO(&companies[i]))
	}

	totalPages := int((total + int64(params.PerPage) - 1) / int64(params.PerPage))
	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       out,
		Total:      total,
		Page:       params.Page,
		PerPage:    params.PerPage,
		TotalPages: totalPages,
	})
}

func (h *AdminHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid customer id"})
		return
	}

	var company models.Company
	err = h.db.WithContext(r.Context()).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Customer not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load customer"})
		return
	}

	var employees []models.Employee
	if err := h.db.WithContext(r.Context()).
		Where("company_id = ?", id).
		Order("created_at DESC").
		Find(&employees).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load customer"})
		return
	}

	var tags []models.ScanTag
	if err := h.db.WithContext(r.Context()).
		Where("company_id = ?", id).
		Order("created_at DESC").
		Find(&tags).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load customer"})
		return
	}

	var orders []models.TagOrder
	if err := h.db.WithContext(r.Context()).
		Where("company_id = ?", id).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to load customer"})
		return
	}

	resp := dto.CustomerDetailResponse{
		Customer:  customerSummaryDTO(&company),
		Employees: make([]dto.EmployeeDTO, 0, len(employees)),
		Tags:      make([]dto.ScanTagDTO, 0, len(tags)),
		Orders:    make([]dto.AdminOrderDTO, 0, len(orders)),
	}
	for i := range employees {
		resp.Employees = append(resp.Employees, employeeDTO(&employees[i]))
	}
	for i := range tags {
		resp.Tags = append(resp.Tags, tagDTO(&tags[i]))
	}
	for i := range orders {
		resp.Orders = append(resp.Orders, adminOrderDTO(&orders[i]))
	}

	writeJSON(w, http.StatusOK, resp)
}

// MarkCustomerSeen clears the flag on one company only; other unseen rows
// keep their place in the queue.
func (h *AdminHandler) MarkCustomerSeen(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid customer id"})
		return
	}

	res := h.db.WithContext(r.Context()).
		Model(&models.Company{}).
		Where("id = ?", id).
		Update("admin_seen", true)
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update customer"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Customer not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Customer marked seen"})
}

// MarkOrderDone completes one order and removes it from the unseen queue.
func (h *AdminHandler) MarkOrderDone(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid order id"})
		return
	}

	res := h.db.WithContext(r.Context()).
		Model(&models.TagOrder{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusDone,
			"admin_seen": true,
		})
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update order"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Order not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Order marked done"})
}

func customerSummaryDTO(c *models.Company) dto.CustomerSummaryDTO {
	return dto.CustomerSummaryDTO{
		ID:                    c.ID.String(),
		CustomerNumber:        c.CustomerNumber,
		Name:                  c.Name,
		SubscriptionStartDate: c.SubscriptionStartDate.Format("2006-01-02"),
		AdminSeen:             c.AdminSeen,
	}
}

func adminOrderDTO(o *models.TagOrder) dto.AdminOrderDTO {
	return dto.AdminOrderDTO{
		ID:        o.ID.String(),
		CompanyID: o.CompanyID.String(),
		Quantity:  o.Quantity,
		Status:    string(o.Status),
		AdminSeen: o.AdminSeen,
		CreatedAt: o.CreatedAt.Format(time.RFC3339),
	}
}

func atoiOrZero(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
