package models

import "time"

type Company struct {
	Base
	CustomerNumber        int64     `gorm:"uniqueIndex;not null" json:"customer_number"`
	SubscriptionStartDate time.Time `json:"subscription_start_date"`

	Name      string `gorm:"not null" json:"name"`
	VATNumber string `gorm:"not null" json:"vat_number"`

	AddressLine1 string `gorm:"not null" json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Postcode     string `gorm:"not null" json:"postcode"`
	City         string `gorm:"not null" json:"city"`
	Country      string `gorm:"not null;default:'BE'" json:"country"`

	DeliveryName         string `gorm:"not null" json:"delivery_name"`
	DeliveryAddressLine1 string `gorm:"not null" json:"delivery_address_line1"`
	DeliveryAddressLine2 string `json:"delivery_address_line2,omitempty"`
	DeliveryPostcode     string `gorm:"not null" json:"delivery_postcode"`
	DeliveryCity         string `gorm:"not null" json:"delivery_city"`
	DeliveryCountry      string `gorm:"not null;default:'BE'" json:"delivery_country"`

	// AdminSeen drives the admin console's "new customers" queue.
	AdminSeen bool `gorm:"default:false" json:"admin_seen"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:CompanyID" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}
