package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/punctoo/punctoo/internal/auth"
	"github.com/punctoo/punctoo/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing.
// TranslateError must be on: code allocation and email uniqueness rely on
// gorm.ErrDuplicatedKey, same as the Postgres setup in production.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Membership{},
		&models.Session{},
		&models.AdminAccount{},
		&models.AdminSession{},
		&models.Employee{},
		&models.ScanTag{},
		&models.TagOrder{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestCompany creates a company with a unique customer number.
func CreateTestCompany(t *testing.T, db *gorm.DB) *models.Company {
	t.Helper()

	var maxNumber int64
	if err := db.Model(&models.Company{}).
		Select("COALESCE(MAX(customer_number), 1000)").
		Scan(&maxNumber).Error; err != nil {
		t.Fatalf("failed to pick customer number: %v", err)
	}

	company := &models.Company{
		Base:                  models.Base{ID: uuid.New()},
		CustomerNumber:        maxNumber + 1,
		SubscriptionStartDate: time.Now(),
		Name:                  "Test Company " + uuid.New().String()[:8],
		VATNumber:             "BE0123456789",
		AddressLine1:          "Main Street 1",
		Postcode:              "1000",
		City:                  "Brussels",
		Country:               "BE",
		DeliveryName:          "Test Company",
		DeliveryAddressLine1:  "Main Street 1",
		DeliveryPostcode:      "1000",
		DeliveryCity:          "Brussels",
		DeliveryCountry:       "BE",
	}

	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create test company: %v", err)
	}

	return company
}

// CreateTestUser creates a user with a membership in the given company.
// Pass models.Role("") to skip the membership.
func CreateTestUser(t *testing.T, db *gorm.DB, company *models.Company, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	if company != nil && role != "" {
		membership := &models.Membership{
			CompanyID: company.ID,
			UserID:    user.ID,
			Role:      role,
		}
		if err := db.Create(membership).Error; err != nil {
			t.Fatalf("failed to create test membership: %v", err)
		}
	}

	return user
}

// CreateTestSession issues a session for the user through the real store.
func CreateTestSession(t *testing.T, store *auth.SessionStore, userID uuid.UUID) *models.Session {
	t.Helper()

	session, err := store.Create(context.Background(), userID)
	if err != nil {
		t.Fatalf("failed to create test session: %v", err)
	}
	return session
}

// CreateTestAdmin creates an admin account with the given password.
func CreateTestAdmin(t *testing.T, db *gorm.DB, password string) *models.AdminAccount {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	admin := &models.AdminAccount{
		Base:         models.Base{ID: uuid.New()},
		Email:        "admin-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
	}

	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("failed to create test admin: %v", err)
	}

	return admin
}

// CreateTestEmployee creates an employee with a fixed pairing code.
func CreateTestEmployee(t *testing.T, db *gorm.DB, companyID uuid.UUID, name, pairingCode string) *models.Employee {
	t.Helper()

	employee := &models.Employee{
		Base:        models.Base{ID: uuid.New()},
		CompanyID:   companyID,
		Name:        name,
		PairingCode: pairingCode,
	}

	if err := db.Create(employee).Error; err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}

	return employee
}

// CreateTestOrder creates a tag order in the "new" state.
func CreateTestOrder(t *testing.T, db *gorm.DB, companyID uuid.UUID, quantity int) *models.TagOrder {
	t.Helper()

	order := &models.TagOrder{
		Base:                 models.Base{ID: uuid.New()},
		CompanyID:            companyID,
		DeliveryName:         "Test Company",
		DeliveryAddressLine1: "Main Street 1",
		DeliveryPostcode:     "1000",
		DeliveryCity:         "Brussels",
		DeliveryCountry:      "BE",
		Quantity:             quantity,
		Status:               models.OrderStatusNew,
	}

	if err := db.Create(order).Error; err != nil {
		t.Fatalf("failed to create test order: %v", err)
	}

	return order
}

// JSONRequest creates an HTTP request with a JSON body and optional session cookie.
func JSONRequest(t *testing.T, method, path string, body interface{}, cookie *http.Cookie) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	return req
}

// SessionCookie builds a cookie the way the server would hand it out.
func SessionCookie(name, sessionID string) *http.Cookie {
	return &http.Cookie{Name: name, Value: sessionID, Path: "/"}
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}
