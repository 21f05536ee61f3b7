package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/codes"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

type TagHandler struct {
	db        *gorm.DB
	allocator *codes.Allocator
}

func NewTagHandler(db *gorm.DB, allocator *codes.Allocator) *TagHandler {
	return &TagHandler{db: db, allocator: allocator}
}

func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var tags []models.ScanTag
	err := h.db.WithContext(r.Context()).
		Where("company_id = ?", tenant.Company.ID).
		Order("created_at DESC").
		Find(&tags).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list tags"})
		return
	}

	out := make([]dto.ScanTagDTO, 0, len(tags))
	for i := range tags {
		out = append(out, tagDTO(&tags[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, _ := middleware.GetTenant(r.Context())

	var req dto.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	companyID := tenant.Company.ID
	tag := models.ScanTag{
		CompanyID: companyID,
		Name:      strings.TrimSpace(req.Name),
	}

	_, err := h.allocator.Allocate(r.Context(), codes.TagCodeLength,
		func(ctx context.Context, code string) (bool, error) {
			var count int64
			err := h.db.WithContext(ctx).Model(&models.ScanTag{}).
				Where("company_id = ? AND code = ?", companyID, code).
				Count(&count).Error
			return count > 0, err
		},
		func(ctx context.Context, code string) error {
			tag.Code = code
			return h.db.WithContext(ctx).Create(&tag).Error
		},
	)
	if err != nil {
		if errors.Is(err, codes.ErrExhausted) {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Could not allocate a unique tag code"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create tag"})
		return
	}

	writeJSON(w, http.StatusCreated, tagDTO(&tag))
}

func tagDTO(t *models.ScanTag) dto.ScanTagDTO {
	return dto.ScanTagDTO{
		ID:        t.ID.String(),
		Name:      t.Name,
		Code:      t.Code,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
