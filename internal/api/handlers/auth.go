package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/punctoo/punctoo/internal/api/dto"
	"github.com/punctoo/punctoo/internal/api/middleware"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
)

type AuthHandler struct {
	authService *auth.Service
	cookieName  string
	secure      bool
}

func NewAuthHandler(authService *auth.Service, cookieName string, secure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, secure: secure}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.Signup(r.Context(), auth.SignupInput{
		Email:                req.Email,
		Password:             req.Password,
		CompanyName:          req.CompanyName,
		VATNumber:            req.VATNumber,
		AddressLine1:         req.AddressLine1,
		AddressLine2:         req.AddressLine2,
		Postcode:             req.Postcode,
		City:                 req.City,
		Country:              req.Country,
		DeliveryName:         req.DeliveryName,
		DeliveryAddressLine1: req.DeliveryAddressLine1,
		DeliveryAddressLine2: req.DeliveryAddressLine2,
		DeliveryPostcode:     req.DeliveryPostcode,
		DeliveryCity:         req.DeliveryCity,
		DeliveryCountry:      req.DeliveryCountry,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "Email already registered"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Signup failed"})
		return
	}

	setSessionCookie(w, h.cookieName, result.Session.ID, result.Session.ExpiresAt, h.secure)

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		User:      userDTO(result.User),
		Company:   companyDTO(result.Company, models.RoleOwner),
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Login failed"})
		return
	}

	setSessionCookie(w, h.cookieName, result.Session.ID, result.Session.ExpiresAt, h.secure)

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		User:      userDTO(result.User),
		ExpiresAt: result.Session.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := middleware.GetSessionID(r.Context()); sessionID != "" {
		if err := h.authService.Logout(r.Context(), sessionID); err != nil {
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Logout failed"})
			return
		}
	}

	clearSessionCookie(w, h.cookieName, h.secure)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Logged out"})
}

// Me returns the resolved principal and active company for the session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp := dto.MeResponse{
		User: dto.UserDTO{ID: principal.UserID.String(), Email: principal.Email},
	}
	if tenant, ok := middleware.GetTenant(r.Context()); ok {
		resp.Company = companyDTO(tenant.Company, tenant.Role)
	}

	writeJSON(w, http.StatusOK, resp)
}

func userDTO(u *models.User) dto.UserDTO {
	return dto.UserDTO{ID: u.ID.String(), Email: u.Email}
}

func companyDTO(c *models.Company, role models.Role) *dto.CompanyDTO {
	if c == nil {
		return nil
	}
	return &dto.CompanyDTO{
		ID:                    c.ID.String(),
		CustomerNumber:        c.CustomerNumber,
		Name:                  c.Name,
		SubscriptionStartDate: c.SubscriptionStartDate.Format("2006-01-02"),
		Role:                  string(role),
	}
}
