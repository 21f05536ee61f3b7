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

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists tenant login sessions. Expiry is enforced by callers
// at lookup time; the background purge sweep is a hygiene pass only.
type SessionStore struct {
	db      *gorm.DB
	renewal time.Duration

	now func() time.Time // overridable in tests
}

func NewSessionStore(db *gorm.DB, renewal time.Duration) *SessionStore {
	return &SessionStore{db: db, renewal: renewal, now: time.Now}
}

// Now is the store's clock; resolvers use it to judge expiry so tests can
// hold one source of time.
func (s *SessionStore) Now() time.Time {
	return s.now()
}

// Create persists a new session for the account with a fresh random
// identifier expiring one renewal window from now.
func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID) (*models.Session, error) {
	id, err := newToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	session := &models.Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.renewal),
	}
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

// Lookup returns the stored record without renewing it. Expired records are
// returned as-is; the resolver decides to revoke them.
func (s *SessionStore) Lookup(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up session: %w", err)
	}
	return &session, nil
}

// Touch slides the expiry forward to one renewal window from now.
func (s *SessionStore) Touch(ctx context.Context, id string) (time.Time, error) {
	expiresAt := s.now().Add(s.renewal)
	res := s.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", id).
		Update("expires_at", expiresAt)
	if res.Error != nil {
		return time.Time{}, fmt.Errorf("touching session: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return time.Time{}, ErrSessionNotFound
	}
	return expiresAt, nil
}

// Revoke deletes the session. Revoking an unknown id is not an error.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every session past its deadline and returns the count.
// Safe to run concurrently and repeatedly.
func (s *SessionStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purging sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
