package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a ledger row. Type and Category are stored as plain tags and
// only become closed types once decoded by the ledger package.
type Transaction struct {
	Base
	Date             time.Time           `gorm:"type:date;not null;index" json:"date"`
	Type             string              `gorm:"size:16;not null;index" json:"type"`
	Description      string              `gorm:"not null" json:"description"`
	AmountBs         decimal.Decimal     `gorm:"type:numeric(14,2);not null" json:"amount_bs"`
	Category         *string             `gorm:"size:32" json:"category,omitempty"`
	PersonID         *string             `gorm:"type:uuid;index" json:"person_id,omitempty"`
	ReceiptImageURL  *string             `json:"receipt_image_url,omitempty"`
	ExchangeRateUsed decimal.NullDecimal `gorm:"type:numeric(14,4)" json:"exchange_rate_used"`
}
