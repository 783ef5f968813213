package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/ledger"
	"fundledger/internal/logger"
	"fundledger/internal/models"
	"fundledger/internal/pagination"
)

// Column limits of transactions.amount_bs NUMERIC(14,2) and
// transactions.exchange_rate_used NUMERIC(14,4).
var (
	maxAmount = decimal.New(1, 12)
	maxRate   = decimal.New(1, 10)
)

const rateSnapshotPlaces = 4

// transactionService reads ledger snapshots and records admin writes.
type transactionService struct {
	db    *gorm.DB
	rates RateProvider
	audit AuditServicer
}

// NewTransactionService creates a new TransactionServicer. rates may be nil,
// in which case new transactions carry no exchange-rate snapshot.
func NewTransactionService(db *gorm.DB, rates RateProvider, audit AuditServicer) TransactionServicer {
	return &transactionService{db: db, rates: rates, audit: audit}
}

// Snapshot loads and decodes every live transaction, newest first. A single
// invalid record fails the whole snapshot.
func (s *transactionService) Snapshot(ctx context.Context) ([]ledger.Entry, error) {
	db := s.db.WithContext(ctx)

	people, err := loadPeople(db)
	if err != nil {
		return nil, err
	}

	var rows []models.Transaction
	if err := db.Order("date DESC").Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	records := make([]ledger.Record, len(rows))
	for i := range rows {
		records[i] = toRecord(&rows[i])
	}
	entries, err := ledger.DecodeAll(records, people)
	if err != nil {
		logger.Get().Errorw("ledger snapshot rejected", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrInvalidRecord, err)
	}
	return entries, nil
}

// ListTransactions returns one page of the filtered snapshot.
func (s *transactionService) ListTransactions(ctx context.Context, filter ledger.Filter, page pagination.PageRequest) (*pagination.PageResponse[ledger.Entry], error) {
	page.Defaults()

	entries, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := pagination.Slice(ledger.Apply(entries, filter), page)
	return &result, nil
}

// RecentTransactions returns the newest limit entries.
func (s *transactionService) RecentTransactions(ctx context.Context, limit int) ([]ledger.Entry, error) {
	if limit <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be positive")
	}
	entries, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return ledger.Recent(entries, limit), nil
}

// GetTransactionByID loads and decodes a single transaction.
func (s *transactionService) GetTransactionByID(ctx context.Context, id string) (*ledger.Entry, error) {
	db := s.db.WithContext(ctx)

	var row models.Transaction
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}

	people := ledger.People{}
	if row.PersonID != nil {
		var person models.Person
		err := db.Where("id = ?", *row.PersonID).First(&person).Error
		switch {
		case err == nil:
			people[person.ID] = person.FullName
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
		}
	}

	entry, err := ledger.Decode(toRecord(&row), people)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidRecord, err)
	}
	return &entry, nil
}

// CreateTransaction validates and stores a new transaction. Income never
// carries a category. When NewPersonName is set the person is created in the
// same database transaction.
func (s *transactionService) CreateTransaction(ctx context.Context, actor Actor, in CreateTransactionInput) (*ledger.Entry, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	typ, ok := ledger.ParseType(in.Type)
	if !ok {
		return nil, apperrors.ErrInvalidTransactionType
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if !in.Amount.Equal(in.Amount.Round(2)) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	if in.Amount.GreaterThanOrEqual(maxAmount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be less than 1000000000000")
	}

	var category *string
	if typ == ledger.TypeExpense && strings.TrimSpace(in.Category) != "" {
		c, ok := ledger.ParseCategory(in.Category)
		if !ok {
			return nil, apperrors.ErrInvalidCategory
		}
		tag := string(c)
		category = &tag
	}

	personID := strings.TrimSpace(in.PersonID)
	newPersonName := strings.TrimSpace(in.NewPersonName)
	if personID != "" && newPersonName != "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "person_id and new_person_name are mutually exclusive")
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	row := &models.Transaction{
		Date:        date,
		Type:        string(typ),
		Description: description,
		AmountBs:    in.Amount,
		Category:    category,
	}
	if url := strings.TrimSpace(in.ReceiptURL); url != "" {
		row.ReceiptImageURL = &url
	}
	if s.rates != nil {
		if rate := s.rates.Peek(); rate.Valid() {
			if v := rate.Value.Round(rateSnapshotPlaces); v.IsPositive() && v.LessThan(maxRate) {
				row.ExchangeRateUsed = decimal.NewNullDecimal(v)
			} else {
				logger.Get().Warnw("exchange rate out of snapshot range, not recorded", "rate", rate.Value.String())
			}
		}
	}

	people := ledger.People{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case newPersonName != "":
			person := &models.Person{FullName: newPersonName}
			if err := tx.Create(person).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
			}
			personID = person.ID
			people[person.ID] = person.FullName
		case personID != "":
			var person models.Person
			if err := tx.Where("id = ?", personID).First(&person).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrPersonNotFound
				}
				return apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
			}
			people[person.ID] = person.FullName
		}
		if personID != "" {
			row.PersonID = &personID
		}
		if err := tx.Create(row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(actor.UserID, "CREATE_TRANSACTION", "transaction", row.ID, actor.IPAddress, map[string]interface{}{
		"type":        row.Type,
		"amount_bs":   row.AmountBs.String(),
		"description": row.Description,
	})

	entry, err := ledger.Decode(toRecord(row), people)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &entry, nil
}

// DeleteTransaction removes a transaction. Subsequent snapshots no longer
// include it.
func (s *transactionService) DeleteTransaction(ctx context.Context, actor Actor, id string) error {
	if !actor.IsAdmin() {
		return apperrors.ErrForbidden
	}

	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrUpstreamFailure, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	s.audit.Log(actor.UserID, "DELETE_TRANSACTION", "transaction", id, actor.IPAddress, nil)
	return nil
}

func loadPeople(db *gorm.DB) (ledger.People, error) {
	var persons []models.Person
	if err := db.Select("id", "full_name").Find(&persons).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}
	people := make(ledger.People, len(persons))
	for _, p := range persons {
		people[p.ID] = p.FullName
	}
	return people, nil
}

func toRecord(t *models.Transaction) ledger.Record {
	return ledger.Record{
		ID:           t.ID,
		Date:         t.Date,
		Type:         t.Type,
		Description:  t.Description,
		Amount:       t.AmountBs,
		Category:     t.Category,
		PersonID:     t.PersonID,
		ReceiptURL:   t.ReceiptImageURL,
		RateSnapshot: t.ExchangeRateUsed,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
