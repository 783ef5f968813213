// Package ledger holds the pure computations behind the fund dashboard:
// decoding stored records into closed types, aggregating balances and
// category totals, filtering snapshots and converting the balance into the
// secondary currency. Nothing in this package performs I/O or keeps state
// between calls.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Type is the closed set of transaction kinds.
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

// Types lists every transaction type in display order.
var Types = []Type{TypeIncome, TypeExpense}

// ParseType maps a stored or user supplied tag to a Type.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, true
	case TypeExpense:
		return TypeExpense, true
	}
	return "", false
}

// Category is the closed set of expense categories. The zero value means
// "no category".
type Category string

const (
	CategoryNone            Category = ""
	CategoryMedicines       Category = "medicines"
	CategoryFood            Category = "food"
	CategoryMaintenance     Category = "maintenance"
	CategoryMedicalExpenses Category = "medical_expenses"
	CategoryTransport       Category = "transport"
	CategoryMiscellaneous   Category = "miscellaneous"
)

// Categories lists every expense category in display order.
var Categories = []Category{
	CategoryMedicines,
	CategoryFood,
	CategoryMaintenance,
	CategoryMedicalExpenses,
	CategoryTransport,
	CategoryMiscellaneous,
}

var categoryLabels = map[Category]string{
	CategoryMedicines:       "Medicinas",
	CategoryFood:            "Comida",
	CategoryMaintenance:     "Mantenimiento",
	CategoryMedicalExpenses: "Gastos Médicos",
	CategoryTransport:       "Transporte",
	CategoryMiscellaneous:   "Gastos Varios",
}

// legacyCategories are the tags written by the first deployment, plus the
// hyphenated spelling of medical_expenses.
var legacyCategories = map[string]Category{
	"medical-expenses": CategoryMedicalExpenses,
	"medicinas":        CategoryMedicines,
	"comida":           CategoryFood,
	"mantenimiento":    CategoryMaintenance,
	"gastos_medicos":   CategoryMedicalExpenses,
	"transporte":       CategoryTransport,
	"gastos_varios":    CategoryMiscellaneous,
}

// ParseCategory maps a stored or user supplied tag to a Category. Legacy
// Spanish tags are accepted as aliases.
func ParseCategory(s string) (Category, bool) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if _, ok := categoryLabels[Category(tag)]; ok {
		return Category(tag), true
	}
	if c, ok := legacyCategories[tag]; ok {
		return c, true
	}
	return CategoryNone, false
}

// Label returns the human readable name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// PersonRef is a resolved reference to the person associated with an entry.
type PersonRef struct {
	ID       string
	FullName string
}

// Entry is a decoded, immutable transaction as seen by the core.
type Entry struct {
	ID           string
	Date         time.Time
	Type         Type
	Description  string
	Amount       decimal.Decimal
	Category     Category
	Person       *PersonRef
	ReceiptURL   string
	RateSnapshot decimal.NullDecimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PersonID returns the id of the associated person, or "" when the entry has
// no person or its reference dangles.
func (e Entry) PersonID() string {
	if e.Person == nil {
		return ""
	}
	return e.Person.ID
}

// bucket is the category an expense is accumulated under.
func (e Entry) bucket() Category {
	if e.Category == CategoryNone {
		return CategoryMiscellaneous
	}
	return e.Category
}
