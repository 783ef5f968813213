package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate is the number of home currency units per one secondary currency unit,
// together with the moment it was fetched.
type Rate struct {
	Value     decimal.Decimal
	FetchedAt time.Time
}

// Valid reports whether the rate can be used for conversion.
func (r *Rate) Valid() bool {
	return r != nil && r.Value.IsPositive()
}

// IsStale reports whether the rate is older than ttl at now. A missing rate
// is always stale.
func (r *Rate) IsStale(now time.Time, ttl time.Duration) bool {
	if r == nil || r.FetchedAt.IsZero() {
		return true
	}
	return now.Sub(r.FetchedAt) >= ttl
}

// Reason explains why a conversion is unavailable.
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonNonPositiveBalance Reason = "non_positive_balance"
	ReasonRateUnavailable    Reason = "rate_unavailable"
)

// Conversion is the balance expressed in the secondary currency, or the
// reason it cannot be shown.
type Conversion struct {
	Available bool
	Amount    decimal.Decimal
	Rate      decimal.Decimal
	FetchedAt time.Time
	Reason    Reason
}

// Convert divides a positive balance by the rate. A missing or non-positive
// rate, or a balance at or below zero, yields an unavailable conversion.
func Convert(balance decimal.Decimal, rate *Rate) Conversion {
	if !rate.Valid() {
		return Conversion{Reason: ReasonRateUnavailable}
	}
	if !balance.IsPositive() {
		return Conversion{Reason: ReasonNonPositiveBalance, Rate: rate.Value, FetchedAt: rate.FetchedAt}
	}
	return Conversion{
		Available: true,
		Amount:    balance.Div(rate.Value),
		Rate:      rate.Value,
		FetchedAt: rate.FetchedAt,
	}
}
