package handlers

import (
	"time"

	"github.com/shopspring/decimal"

	"fundledger/internal/ledger"
	"fundledger/internal/pagination"
	"fundledger/internal/services"
)

const dateLayout = "2006-01-02"

// PersonRefResponse is the person attached to a transaction.
type PersonRefResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}

// TransactionResponse represents a transaction in the response. Amounts are
// decimal strings in bolívares.
type TransactionResponse struct {
	ID               string             `json:"id"`
	Date             string             `json:"date"`
	Type             ledger.Type        `json:"type"`
	Description      string             `json:"description"`
	AmountBs         decimal.Decimal    `json:"amount_bs"`
	Category         *string            `json:"category"`
	CategoryLabel    *string            `json:"category_label"`
	Person           *PersonRefResponse `json:"person"`
	ReceiptImageURL  *string            `json:"receipt_image_url"`
	ExchangeRateUsed *decimal.Decimal   `json:"exchange_rate_used"`
	CreatedAt        time.Time          `json:"created_at"`
}

func newTransactionResponse(e ledger.Entry) TransactionResponse {
	r := TransactionResponse{
		ID:          e.ID,
		Date:        e.Date.Format(dateLayout),
		Type:        e.Type,
		Description: e.Description,
		AmountBs:    e.Amount,
		CreatedAt:   e.CreatedAt,
	}
	if e.Category != ledger.CategoryNone {
		code, label := string(e.Category), e.Category.Label()
		r.Category, r.CategoryLabel = &code, &label
	}
	if e.Person != nil {
		r.Person = &PersonRefResponse{ID: e.Person.ID, FullName: e.Person.FullName}
	}
	if e.ReceiptURL != "" {
		url := e.ReceiptURL
		r.ReceiptImageURL = &url
	}
	if e.RateSnapshot.Valid {
		rate := e.RateSnapshot.Decimal
		r.ExchangeRateUsed = &rate
	}
	return r
}

func newTransactionResponses(entries []ledger.Entry) []TransactionResponse {
	out := make([]TransactionResponse, len(entries))
	for i, e := range entries {
		out[i] = newTransactionResponse(e)
	}
	return out
}

func newTransactionPage(p *pagination.PageResponse[ledger.Entry]) pagination.PageResponse[TransactionResponse] {
	return pagination.PageResponse[TransactionResponse]{
		Data:       newTransactionResponses(p.Data),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
	}
}

// ConversionResponse is the balance in dollars, or why it is not shown.
type ConversionResponse struct {
	Available bool             `json:"available"`
	AmountUSD *decimal.Decimal `json:"amount_usd,omitempty"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	FetchedAt *time.Time       `json:"fetched_at,omitempty"`
	Reason    ledger.Reason    `json:"reason,omitempty"`
}

// SummaryResponse is the headline dashboard figures.
type SummaryResponse struct {
	TotalIncome      decimal.Decimal    `json:"total_income"`
	TotalExpense     decimal.Decimal    `json:"total_expense"`
	CurrentBalance   decimal.Decimal    `json:"current_balance"`
	TransactionCount int                `json:"transaction_count"`
	Conversion       ConversionResponse `json:"conversion"`
}

func newSummaryResponse(s *services.DashboardSummary) SummaryResponse {
	conv := ConversionResponse{Available: s.Conversion.Available, Reason: s.Conversion.Reason}
	if s.Conversion.Available {
		amount := s.Conversion.Amount.Round(2)
		conv.AmountUSD = &amount
	}
	if s.Conversion.Rate.IsPositive() {
		rate := s.Conversion.Rate
		fetched := s.Conversion.FetchedAt
		conv.Rate, conv.FetchedAt = &rate, &fetched
	}
	return SummaryResponse{
		TotalIncome:      s.Summary.TotalIncome,
		TotalExpense:     s.Summary.TotalExpense,
		CurrentBalance:   s.Summary.CurrentBalance,
		TransactionCount: s.TransactionCount,
		Conversion:       conv,
	}
}

// CategoryResponse is one entry of the category enumeration.
type CategoryResponse struct {
	Code  ledger.Category `json:"code"`
	Label string          `json:"label"`
}

// CategoryShareResponse is one row of the expense breakdown.
type CategoryShareResponse struct {
	Category ledger.Category `json:"category"`
	Label    string          `json:"label"`
	Total    decimal.Decimal `json:"total"`
	Percent  decimal.Decimal `json:"percent"`
}

// ExchangeRateResponse is the current official rate.
type ExchangeRateResponse struct {
	Rate      decimal.Decimal `json:"rate"`
	FetchedAt time.Time       `json:"fetched_at"`
}
