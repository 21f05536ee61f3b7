package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login session for a tenant user. The ID is an
// opaque random token handed to the browser as a cookie; expiry slides
// forward on every authenticated request.
type Session struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its deadline at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
