package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/codes"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

type EmployeeHandler struct {
	db        *gorm.DB
	allocator *codes.Allocator
}

func NewEmployeeHandler(db *gorm.DB, allocator *codes.Allocator) *EmployeeHandler {
	return &EmployeeHandler{db: db, allocator: allocator}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var employees []models.Employee
	err := h.db.WithContext(r.Context()).
		Where("company_id = ?", tenant.Company.ID).
		Order("created_at DESC").
		Find(&employees).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list employees"})
		return
	}

	out := make([]dto.EmployeeDTO, 0, len(employees))
	for i := range employees {
		out = append(out, employeeDTO(&employees[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var req dto.CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	companyID := tenant.Company.ID
	employee := models.Employee{
		CompanyID: companyID,
		Name:      strings.TrimSpace(req.Name),
	}

	_, err := h.allocator.Allocate(r.Context(), codes.PairingCodeLength,
		func(ctx context.Context, code string) (bool, error) {
			var count int64
			err := h.db.WithContext(ctx).Model(&models.Employee{}).
				Where("company_id = ? AND pairing_code = ?", companyID, code).
				Count(&count).Error
			return count > 0, err
		},
		func(ctx context.Context, code string) error {
			employee.PairingCode = code
			return h.db.WithContext(ctx).Create(&employee).Error
		},
	)
	if err != nil {
		if errors.Is(err, codes.ErrExhausted) {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not allocate a unique pairing code"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create employee"})
		return
	}

	writeJSON(w, http.StatusCreated, employeeDTO(&employee))
}

func (h *EmployeeHandler) Rename(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid employee id"})
		return
	}

	var req dto.RenameEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	// Scoped to the company so one tenant can never rename another's employee.
	res := h.db.WithContext(r.Context()).
		Model(&models.Employee{}).
		Where("id = ? AND company_id = ?", id, tenant.Company.ID).
		Update("name", strings.TrimSpace(req.Name))
	if res.Error != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to rename employee"})
		return
	}
	if res.RowsAffected == 0 {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Employee not found"})
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Employee renamed"})
}

func employeeDTO(e *models.Employee) dto.EmployeeDTO {
	return dto.EmployeeDTO{
		ID:          e.ID.String(),
		Name:        e.Name,
		PairingCode: e.PairingCode,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
