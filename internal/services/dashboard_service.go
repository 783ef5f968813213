package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	apperrors "fundledger/internal/errors"
	"fundledger/internal/exchangerate"
	"fundledger/internal/ledger"
	"fundledger/internal/logger"
)

var hundred = decimal.NewFromInt(100)

// dashboardService derives the public figures from a ledger snapshot.
type dashboardService struct {
	transactions TransactionServicer
	rates        RateProvider
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(transactions TransactionServicer, rates RateProvider) DashboardServicer {
	return &dashboardService{transactions: transactions, rates: rates}
}

// Summary aggregates the filtered snapshot and converts its balance. A
// missing rate degrades the conversion instead of failing the summary.
func (s *dashboardService) Summary(ctx context.Context, filter ledger.Filter) (*DashboardSummary, error) {
	entries, err := s.transactions.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	selected := ledger.Apply(entries, filter)

	rate, err := s.rates.Current(ctx)
	if err != nil {
		logger.Get().Warnw("summary without exchange rate", "error", err)
		rate = nil
	}

	summary := ledger.Summarize(selected)
	return &DashboardSummary{
		Summary:          summary,
		Conversion:       ledger.Convert(summary.CurrentBalance, rate),
		TransactionCount: len(selected),
	}, nil
}

// CategoryBreakdown lists every expense category in display order with its
// total and share of total expense.
func (s *dashboardService) CategoryBreakdown(ctx context.Context, filter ledger.Filter) ([]CategoryShare, error) {
	entries, err := s.transactions.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	totals := ledger.TotalsByCategory(ledger.Apply(entries, filter))
	sum := totals.Sum()

	shares := make([]CategoryShare, 0, len(ledger.Categories))
	for _, c := range ledger.Categories {
		share := CategoryShare{Category: c, Total: totals[c]}
		if sum.IsPositive() {
			share.Percent = totals[c].Mul(hundred).Div(sum).Round(2)
		}
		shares = append(shares, share)
	}
	return shares, nil
}

// ExchangeRate returns the current rate or RATE_UNAVAILABLE.
func (s *dashboardService) ExchangeRate(ctx context.Context) (*ledger.Rate, error) {
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, rateError(err)
	}
	return rate, nil
}

// RefreshExchangeRate forces a fetch from the rate source.
func (s *dashboardService) RefreshExchangeRate(ctx context.Context) (*ledger.Rate, error) {
	rate, err := s.rates.Refresh(ctx)
	if err != nil {
		return nil, rateError(err)
	}
	logger.Get().Infow("exchange rate refreshed on request", "rate", rate.Value.String())
	return rate, nil
}

func rateError(err error) error {
	if errors.Is(err, exchangerate.ErrUnavailable) {
		return apperrors.Wrap(apperrors.ErrRateUnavailable, err)
	}
	return apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
}
