package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the fixed set of company roles, strongest first.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleViewer  Role = "viewer"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleViewer:
		return true
	}
	return false
}

// Membership links a user to a company with a role. The schema is
// many-to-many, but resolution only ever uses the most recently created
// membership per user (single active tenant per account).
type Membership struct {
	CompanyID uuid.UUID `gorm:"type:uuid;primaryKey" json:"company_id"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role      Role      `gorm:"not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Company *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"-"`
}

func (Membership) TableName() string {
	return "memberships"
}
