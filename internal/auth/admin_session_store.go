package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

// AdminSessionStore is the admin-track twin of SessionStore. The duplication
// is deliberate: the two tracks must not share a lookup function or a table,
// so a bug in one can never resolve a principal on the other.
type AdminSessionStore struct {
	db      *gorm.DB
	renewal time.Duration

	now func() time.Time
}

func NewAdminSessionStore(db *gorm.DB, renewal time.Duration) *AdminSessionStore {
	return &AdminSessionStore{db: db, renewal: renewal, now: time.Now}
}

func (s *AdminSessionStore) Now() time.Time {
	return s.now()
}

func (s *AdminSessionStore) Create(ctx context.Context, adminID uuid.UUID) (*models.AdminSession, error) {
	id, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.AdminSession{
		ID:        id,
		AdminID:   adminID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.renewal),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("creating admin session: %w", err)
	}
	return session, nil
}

func (s *AdminSessionStore) Lookup(ctx context.Context, id string) (*models.AdminSession, error) {
	var session models.AdminSession
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up admin session: %w", err)
	}
	return &session, nil
}

func (s *AdminSessionStore) Touch(ctx context.Context, id string) (time.Time, error) {
	expiresAt := s.now().Add(s.renewal)
	res := s.db.WithContext(ctx).
		Model(&models.AdminSession{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return time.Time{}, fmt.Errorf("touching admin session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return time.Time{}, ErrSessionNotFound
	}
	return expiresAt, nil
}

func (s *AdminSessionStore) Revoke(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.AdminSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("revoking admin session: %w", err)
	}
	return nil
}

func (s *AdminSessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.AdminSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging admin sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
