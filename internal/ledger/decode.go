package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidRecord is matched by every RecordError.
var ErrInvalidRecord = errors.New("invalid record")

// RecordError describes a stored record that failed shape validation.
type RecordError struct {
	ID     string
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %s: %s: %s", e.ID, e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidRecord.
func (e *RecordError) Is(target error) bool { return target == ErrInvalidRecord }

// Record is a transaction row as handed over by the ledger store, with its
// enumerations still in string form.
type Record struct {
	ID           string
	Date         time.Time
	Type         string
	Description  string
	Amount       decimal.Decimal
	Category     *string
	PersonID     *string
	ReceiptURL   *string
	RateSnapshot decimal.NullDecimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// People indexes known person names by id. References to ids missing from
// the index are treated as unspecified.
type People map[string]string

// Decode validates rec and turns it into an Entry. Records with an empty
// description, a negative amount or an unknown type or category tag are
// rejected with a *RecordError.
func Decode(rec Record, people People) (Entry, error) {
	typ, ok := ParseType(rec.Type)
	if !ok {
		return Entry{}, &RecordError{ID: rec.ID, Field: "type", Reason: fmt.Sprintf("unknown tag %q", rec.Type)}
	}
	desc := strings.TrimSpace(rec.Description)
	if desc == "" {
		return Entry{}, &RecordError{ID: rec.ID, Field: "description", Reason: "empty"}
	}
	if rec.Amount.IsNegative() {
		return Entry{}, &RecordError{ID: rec.ID, Field: "amount", Reason: "negative"}
	}

	cat := CategoryNone
	if rec.Category != nil && strings.TrimSpace(*rec.Category) != "" {
		cat, ok = ParseCategory(*rec.Category)
		if !ok {
			return Entry{}, &RecordError{ID: rec.ID, Field: "category", Reason: fmt.Sprintf("unknown tag %q", *rec.Category)}
		}
	}

	e := Entry{
		ID:           rec.ID,
		Date:         rec.Date,
		Type:         typ,
		Description:  desc,
		Amount:       rec.Amount,
		Category:     cat,
		RateSnapshot: rec.RateSnapshot,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.ReceiptURL != nil {
		e.ReceiptURL = *rec.ReceiptURL
	}
	if rec.PersonID != nil {
		if name, found := people[*rec.PersonID]; found {
			e.Person = &PersonRef{ID: *rec.PersonID, FullName: name}
		}
	}
	return e, nil
}

// DecodeAll decodes a whole snapshot, preserving order. The first invalid
// record aborts decoding so a snapshot is never partially aggregated.
func DecodeAll(recs []Record, people People) ([]Entry, error) {
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		e, err := Decode(rec, people)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
