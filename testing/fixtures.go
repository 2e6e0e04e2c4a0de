// Package testing provides test utilities and database setup for testing the catalog system
package testing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"

	"github.com/amirphl/Takaramono/models"
	"github.com/amirphl/Takaramono/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plaintext password every fixture account is created with
const TestPassword = "TestPass123"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates an active account with a blank profile attached
func (tf *TestFixtures) CreateTestAccount(staff bool) (*models.Account, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	suffix := randomDigits(9)
	account := &models.Account{
		UUID:         uuid.New(),
		Username:     fmt.Sprintf("user_%s", suffix),
		Email:        fmt.Sprintf("user.%s@example.com", suffix),
		PasswordHash: string(hashedPassword),
		IsStaff:      utils.ToPtr(staff),
		IsActive:     utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	profile := &models.Profile{AccountID: account.ID}
	if err := tf.DB.DB.Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create test profile: %w", err)
	}

	return account, nil
}

// CreateInactiveTestAccount creates a deactivated account
func (tf *TestFixtures) CreateInactiveTestAccount() (*models.Account, error) {
	account, err := tf.CreateTestAccount(false)
	if err != nil {
		return nil, err
	}

	account.IsActive = utils.ToPtr(false)
	if err := tf.DB.DB.Save(account).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate test account: %w", err)
	}

	return account, nil
}

// CreateTestCategory creates a category with a slug derived from the name
func (tf *TestFixtures) CreateTestCategory(name string) (*models.Category, error) {
	category := &models.Category{
		Name:        name,
		Slug:        utils.Slugify(name),
		Description: fmt.Sprintf("Test category %s", name),
	}

	if err := tf.DB.DB.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create test category: %w", err)
	}

	return category, nil
}

// CreateTestProduct creates an active product owned by the given account
func (tf *TestFixtures) CreateTestProduct(ownerID uint, categoryID *uint, name string, price float64) (*models.Product, error) {
	product := &models.Product{
		OwnerID:     ownerID,
		CategoryID:  categoryID,
		Name:        name,
		Slug:        fmt.Sprintf("%s-%s", utils.Slugify(name), randomDigits(6)),
		Description: fmt.Sprintf("Test product %s", name),
		Price:       price,
		Stock:       10,
		IsActive:    utils.ToPtr(true),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create test product: %w", err)
	}

	return product, nil
}

// CreateInactiveTestProduct creates an inactive product with zero stock
func (tf *TestFixtures) CreateInactiveTestProduct(ownerID uint, categoryID *uint, name string) (*models.Product, error) {
	product := &models.Product{
		OwnerID:    ownerID,
		CategoryID: categoryID,
		Name:       name,
		Slug:       fmt.Sprintf("%s-%s", utils.Slugify(name), randomDigits(6)),
		Price:      9.99,
		Stock:      0,
		IsActive:   utils.ToPtr(false),
	}

	if err := tf.DB.DB.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create inactive test product: %w", err)
	}

	return product, nil
}

// GenerateSecureToken returns a random URL-safe token
func GenerateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// CreateTestSession creates an active session for the account
func (tf *TestFixtures) CreateTestSession(accountID uint) (*models.AccountSession, error) {
	sessionToken, err := GenerateSecureToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secure session token: %w", err)
	}

	session := &models.AccountSession{
		CorrelationID: uuid.New(),
		AccountID:     accountID,
		SessionToken:  sessionToken,
		IsActive:      utils.ToPtr(true),
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}

	if err := tf.DB.DB.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create test session: %w", err)
	}

	return session, nil
}

func randomDigits(n int) string {
	digits := make([]byte, n)
	for i := range digits {
		v, _ := rand.Int(rand.Reader, big.NewInt(10))
		digits[i] = byte('0' + v.Int64())
	}
	return string(digits)
}
