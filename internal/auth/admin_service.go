package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/gorm"
)

var ErrAdminNotFound = errors.New("admin not found")

// AdminService is the admin-track counterpart of Service. It shares no
// tables, cookies or lookup paths with the tenant track.
type AdminService struct {
	db       *gorm.DB
	sessions *AdminSessionStore
}

func NewAdminService(db *gorm.DB, sessions *AdminSessionStore) *AdminService {
	return &AdminService{db: db, sessions: sessions}
}

func (s *AdminService) Sessions() *AdminSessionStore {
	return s.sessions
}

// SeedBootstrapAdmin creates the first admin account from configured
// credentials. Runs once at process start; insert-if-absent, so restarts and
// concurrent replicas are safe. Empty credentials disable seeding.
func (s *AdminService) SeedBootstrapAdmin(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var existing models.AdminAccount
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.AdminAccount{Email: email, PasswordHash: hash}
	err = s.db.WithContext(ctx).Create(&admin).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Another replica seeded it first.
		return nil
	}
	if err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}
	return nil
}

type AdminAuthResult struct {
	Admin   *models.AdminAccount
	Session *models.AdminSession
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*AdminAuthResult, error) {
	var admin models.AdminAccount
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up admin: %w", err)
	}

	if !CheckPassword(password, admin.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, admin.ID)
	if err != nil {
		return nil, err
	}

	return &AdminAuthResult{Admin: &admin, Session: session}, nil
}

func (s *AdminService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *AdminService) GetAdminByID(ctx context.Context, id uuid.UUID) (*models.AdminAccount, error) {
	var admin models.AdminAccount
	err := s.db.WithContext(ctx).First(&admin, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAdminNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up admin: %w", err)
	}
	return &admin, nil
}
