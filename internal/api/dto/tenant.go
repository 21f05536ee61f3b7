package dto

import "github.com/punctoo/punctoo/internal/api/validation"

type EmployeeDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PairingCode string `json:"pairing_code"`
	CreatedAt   string `json:"created_at"`
}

type CreateEmployeeRequest struct {
	Name string `json:"name"`
}

func (r CreateEmployeeRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.HasContent(r.Name) {
		errors["name"] = "Name is required"
	}
	return errors
}

type RenameEmployeeRequest struct {
	Name string `json:"name"`
}

func (r RenameEmployeeRequest) Validate() map[string]string {
	return CreateEmployeeRequest(r).Validate()
}

type ScanTagDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	CreatedAt string `json:"created_at"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

func (r CreateTagRequest) Validate() map[string]string {
	errors := make(map[string]string)
	if !validation.HasContent(r.Name) {
		errors["name"] = "Name is required"
	}
	return errors
}

type TagOrderDTO struct {
	ID        string `json:"id"`
	Quantity  int    `json:"quantity"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

type CreateOrderRequest struct {
	DeliveryName         string `json:"delivery_name"`
	DeliveryAddressLine1 string `json:"delivery_address_line1"`
	DeliveryAddressLine2 string `json:"delivery_address_line2,omitempty"`
	DeliveryPostcode     string `json:"delivery_postcode"`
	DeliveryCity         string `json:"delivery_city"`
	DeliveryCountry      string `json:"delivery_country"`
	Quantity             int    `json:"quantity"`
}

func (r CreateOrderRequest) Validate() map[string]string {
	errors := make(map[string]string)

	required := map[string]string{
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
	if r.Quantity < 1 {
		errors["quantity"] = "Quantity must be at least 1"
	}

	return errors
}
