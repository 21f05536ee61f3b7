package dto

import "github.com/punctoo/punctoo/internal/api/validation"

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`

	CompanyName  string `json:"company_name"`
	VATNumber    string `json:"vat_number"`
	AddressLine1 string `json:"company_address_line1"`
	AddressLine2 string `json:"company_address_line2,omitempty"`
	Postcode     string `json:"company_postcode"`
	City         string `json:"company_city"`
	Country      string `json:"company_country"`

	DeliveryName         string `json:"delivery_name"`
	DeliveryAddressLine1 string `json:"delivery_address_line1"`
	DeliveryAddressLine2 string `json:"delivery_address_line2,omitempty"`
	DeliveryPostcode     string `json:"delivery_postcode"`
	DeliveryCity         string `json:"delivery_city"`
	DeliveryCountry      string `json:"delivery_country"`
}

func (r SignupRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is invalid"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 8 {
		errors["password"] = "Password must be at least 8 characters"
	}

	required := map[string]string{
		"company_name":           r.CompanyName,
		"vat_number":             r.VATNumber,
		"company_address_line1":  r.AddressLine1,
		"company_postcode":       r.Postcode,
		"company_city":           r.City,
		"company_country":        r.Country,
		"delivery_name":          r.DeliveryName,
		"delivery_address_line1": r.DeliveryAddressLine1,
		"delivery_postcode":      r.DeliveryPostcode,
		"delivery_city":          r.DeliveryCity,
		"delivery_country":       r.DeliveryCountry,
	}
	for field, value := range required {
		if !validation.HasContent(value) {
			errors[field] = "Field is required"
		}
	}

	return errors
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UserDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type CompanyDTO struct {
	ID                    string `json:"id"`
	CustomerNumber        int64  `json:"customer_number"`
	Name                  string `json:"name"`
	SubscriptionStartDate string `json:"subscription_start_date"`
	Role                  string `json:"role,omitempty"`
}

type AuthResponse struct {
	User      UserDTO     `json:"user"`
	Company   *CompanyDTO `json:"company,omitempty"`
	ExpiresAt string      `json:"expires_at"`
}

type MeResponse struct {
	User    UserDTO     `json:"user"`
	Company *CompanyDTO `json:"company,omitempty"`
}
