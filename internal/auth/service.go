package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/database/models"
	"github.com/punctoo/punctoo/internal/metrics"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// firstCustomerNumber is the floor for customer numbers; signup assigns max+1.
const firstCustomerNumber = 1000

type Service struct {
	db       *gorm.DB
	sessions *SessionStore
	metrics  *metrics.Collector
}

func NewService(db *gorm.DB, sessions *SessionStore, collector *metrics.Collector) *Service {
	return &Service{db: db, sessions: sessions, metrics: collector}
}

// Sessions exposes the tenant session store backing this service.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

type SignupInput struct {
	Email    string
	Password string

	CompanyName  string
	VATNumber    string
	AddressLine1 string
	AddressLine2 string
	Postcode     string
	City         string
	Country      string

	DeliveryName         string
	DeliveryAddressLine1 string
	DeliveryAddressLine2 string
	DeliveryPostcode     string
	DeliveryCity         string
	DeliveryCountry      string
}

type AuthResult struct {
	User    *models.User
	Company *models.Company
	Session *models.Session
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeVAT strips whitespace and uppercases a VAT number.
func NormalizeVAT(vat string) string {
	return strings.ToUpper(strings.Join(strings.Fields(vat), ""))
}

// Signup creates the company, its first account and the owner membership in
// a single transaction, then issues a session. A partial signup never leaves
// an account without a company.
func (s *Service) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	email := NormalizeEmail(input.Email)

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking email: %w", err)
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var (
		company models.Company
		user    models.User
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxNumber int64
		if err := tx.Model(&models.Company{}).
			Select("COALESCE(MAX(customer_number), ?)", firstCustomerNumber).
			Scan(&maxNumber).Error; err != nil {
			return fmt.Errorf("allocating customer number: %w", err)
		}

		company = models.Company{
			CustomerNumber:        maxNumber + 1,
			SubscriptionStartDate: time.Now().Truncate(24 * time.Hour),
			Name:                  strings.TrimSpace(input.CompanyName),
			VATNumber:             NormalizeVAT(input.VATNumber),
			AddressLine1:          strings.TrimSpace(input.AddressLine1),
			AddressLine2:          strings.TrimSpace(input.AddressLine2),
			Postcode:              strings.TrimSpace(input.Postcode),
			City:                  strings.TrimSpace(input.City),
			Country:               strings.TrimSpace(input.Country),
			DeliveryName:          strings.TrimSpace(input.DeliveryName),
			DeliveryAddressLine1:  strings.TrimSpace(input.DeliveryAddressLine1),
			DeliveryAddressLine2:  strings.TrimSpace(input.DeliveryAddressLine2),
			DeliveryPostcode:      strings.TrimSpace(input.DeliveryPostcode),
			DeliveryCity:          strings.TrimSpace(input.DeliveryCity),
			DeliveryCountry:       strings.TrimSpace(input.DeliveryCountry),
			AdminSeen:             false,
		}
		if err := tx.Create(&company).Error; err != nil {
			return fmt.Errorf("creating company: %w", err)
		}

		user = models.User{
			Email:        email,
			PasswordHash: hash,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		membership := models.Membership{
			CompanyID: company.ID,
			UserID:    user.ID,
			Role:      models.RoleOwner,
		}
		return tx.Create(&membership).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordSignup()

	return &AuthResult{User: &user, Company: &company, Session: session}, nil
}

// Login verifies credentials and issues a fresh session.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin()

	return &AuthResult{User: &user, Session: session}, nil
}

// Logout revokes the session; unknown ids are a no-op.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	return &user, nil
}

// ActiveMembership resolves the single active company membership for an
// account: the most recently created one. A later membership shadows earlier
// ones; callers must not depend on any other row. Returns nil when the
// account has no membership.
func (s *Service) ActiveMembership(ctx context.Context, userID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.WithContext(ctx).
		Preload("Company").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving membership: %w", err)
	}
	return &membership, nil
}
