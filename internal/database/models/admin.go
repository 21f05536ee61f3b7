package models

import (
	"time"

	"github.com/google/uuid"
)

// AdminAccount is an operator account for the admin console. Admins are
// seeded from configuration, never through self-service signup.
type AdminAccount struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (AdminAccount) TableName() string {
	return "admin_accounts"
}

// AdminSession mirrors Session structurally but lives in its own table and
// references admin accounts. Tenant and admin sessions are deliberately
// type-distinct: no code path may accept one in place of the other.
type AdminSession struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	AdminID   uuid.UUID `gorm:"type:uuid;index;not null" json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

func (AdminSession) TableName() string {
	return "admin_sessions"
}

func (s *AdminSession) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
