package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// Actor is the authenticated caller of a write operation. It is passed
// explicitly so services never depend on request-scoped state.
type Actor struct {
	UserID    string
	Role      models.Role
	IPAddress string
}

// IsAdmin reports whether the actor may modify the ledger.
func (a Actor) IsAdmin() bool {
	return a.UserID != "" && a.Role == models.RoleAdmin
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, fullName string, role models.Role) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// PersonServicer defines the contract for managing persons.
type PersonServicer interface {
	CreatePerson(ctx context.Context, actor Actor, fullName, notes string) (*models.Person, error)
	ListPersons(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	GetPersonByID(ctx context.Context, id string) (*models.Person, error)
	DeletePerson(ctx context.Context, actor Actor, id string) error
}

// CreateTransactionInput holds the fields of a new transaction. Either
// PersonID or NewPersonName may be set, not both.
type CreateTransactionInput struct {
	Date          time.Time
	Type          string
	Description   string
	Amount        decimal.Decimal
	Category      string
	PersonID      string
	NewPersonName string
	ReceiptURL    string
}

// TransactionServicer defines the contract for reading and writing the ledger.
type TransactionServicer interface {
	Snapshot(ctx context.Context) ([]ledger.Entry, error)
	ListTransactions(ctx context.Context, filter ledger.Filter, page pagination.PageRequest) (*pagination.PageResponse[ledger.Entry], error)
	RecentTransactions(ctx context.Context, limit int) ([]ledger.Entry, error)
	GetTransactionByID(ctx context.Context, id string) (*ledger.Entry, error)
	CreateTransaction(ctx context.Context, actor Actor, in CreateTransactionInput) (*ledger.Entry, error)
	DeleteTransaction(ctx context.Context, actor Actor, id string) error
}

// RateProvider supplies the current exchange rate.
type RateProvider interface {
	// Current returns a fresh rate, refreshing it if needed.
	Current(ctx context.Context) (*ledger.Rate, error)
	// Refresh fetches a new rate even if the cached one is fresh.
	Refresh(ctx context.Context) (*ledger.Rate, error)
	// Peek returns the cached rate, or nil, without a remote call.
	Peek() *ledger.Rate
}

// DashboardSummary is the headline view of a (possibly filtered) ledger.
type DashboardSummary struct {
	Summary          ledger.Summary
	Conversion       ledger.Conversion
	TransactionCount int
}

// CategoryShare is one row of the expense breakdown.
type CategoryShare struct {
	Category ledger.Category
	Total    decimal.Decimal
	// Percent of total expense, 0 when there are no expenses.
	Percent decimal.Decimal
}

// DashboardServicer defines the contract for the public dashboard figures.
type DashboardServicer interface {
	Summary(ctx context.Context, filter ledger.Filter) (*DashboardSummary, error)
	CategoryBreakdown(ctx context.Context, filter ledger.Filter) ([]CategoryShare, error)
	ExchangeRate(ctx context.Context) (*ledger.Rate, error)
	RefreshExchangeRate(ctx context.Context) (*ledger.Rate, error)
}

// ReceiptUploader stores receipt images on behalf of admins.
type ReceiptUploader interface {
	UploadReceipt(ctx context.Context, actor Actor, data []byte, filename string) (string, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
