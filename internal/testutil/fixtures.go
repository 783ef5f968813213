package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fundledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a viewer with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestAdmin creates an admin with a hashed password and unique email.
func CreateTestAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := CreateTestUserWithEmail(t, db, fmt.Sprintf("admin%d@test.com", nextID()))
	if err := db.Model(user).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("failed to promote test user: %v", err)
	}
	user.Role = models.RoleAdmin
	return user
}

// CreateTestUserWithEmail creates a viewer with the given email and the
// password "password123".
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Role:     models.RoleViewer,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPerson creates a person with a unique name.
func CreateTestPerson(t *testing.T, db *gorm.DB) *models.Person {
	t.Helper()
	return CreateTestPersonWithName(t, db, fmt.Sprintf("Person %d", nextID()))
}

// CreateTestPersonWithName creates a person with the given name.
func CreateTestPersonWithName(t *testing.T, db *gorm.DB, name string) *models.Person {
	t.Helper()

	person := &models.Person{FullName: name}
	if err := db.Create(person).Error; err != nil {
		t.Fatalf("failed to create test person: %v", err)
	}
	return person
}

// TransactionOption customises a fixture transaction.
type TransactionOption func(*models.Transaction)

// WithCategory sets the stored category tag.
func WithCategory(tag string) TransactionOption {
	return func(tx *models.Transaction) { tx.Category = &tag }
}

// WithPerson links the transaction to a person id.
func WithPerson(id string) TransactionOption {
	return func(tx *models.Transaction) { tx.PersonID = &id }
}

// WithDate sets the transaction date.
func WithDate(d time.Time) TransactionOption {
	return func(tx *models.Transaction) { tx.Date = d }
}

// WithDescription sets the description.
func WithDescription(desc string) TransactionOption {
	return func(tx *models.Transaction) { tx.Description = desc }
}

// CreateTestTransaction creates a transaction of the given type and amount
// in bolívares, e.g. "150.00".
func CreateTestTransaction(t *testing.T, db *gorm.DB, txType, amount string, opts ...TransactionOption) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		Date:        time.Now().UTC().Truncate(24 * time.Hour),
		Type:        txType,
		Description: fmt.Sprintf("Test transaction %d", nextID()),
		AmountBs:    decimal.RequireFromString(amount),
	}
	for _, opt := range opts {
		opt(tx)
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}
