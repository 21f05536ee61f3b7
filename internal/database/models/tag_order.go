package models

import "github.com/google/uuid"

type OrderStatus string

const (
	OrderStatusNew        OrderStatus = "new"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDone       OrderStatus = "done"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// TagOrder is a reorder request for extra scan tags, shipped to a delivery
// address the customer fills in again per order.
type TagOrder struct {
	Base
	CompanyID uuid.UUID `gorm:"type:uuid;index;not null" json:"company_id"`

	DeliveryName         string `gorm:"not null" json:"delivery_name"`
	DeliveryAddressLine1 string `gorm:"not null" json:"delivery_address_line1"`
	DeliveryAddressLine2 string `json:"delivery_address_line2,omitempty"`
	DeliveryPostcode     string `gorm:"not null" json:"delivery_postcode"`
	DeliveryCity         string `gorm:"not null" json:"delivery_city"`
	DeliveryCountry      string `gorm:"not null;default:'BE'" json:"delivery_country"`

	Quantity int         `gorm:"not null;default:1" json:"quantity"`
	Status   OrderStatus `gorm:"not null;default:'new'" json:"status"`

	// AdminSeen drives the admin console's "new orders" queue.
	AdminSeen bool `gorm:"default:false" json:"admin_seen"`
}

func (TagOrder) TableName() string {
	return "scantag_orders"
}
