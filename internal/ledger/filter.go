package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFilter is returned by ParseFilter for unknown type or category
// values.
var ErrInvalidFilter = errors.New("invalid filter")

// allValue is the sentinel used by clients for "no constraint".
const allValue = "all"

// Filter is a conjunction of optional predicates. Zero-valued fields impose
// no constraint.
type Filter struct {
	Text     string
	Type     Type
	Category Category
	PersonID string
}

// Predicate reports whether an entry belongs to a view.
type Predicate func(Entry) bool

// ParseFilter builds a Filter from raw query values. Empty strings and "all"
// mean no constraint; unknown type or category tags are rejected.
func ParseFilter(text, typ, category, personID string) (Filter, error) {
	f := Filter{Text: strings.TrimSpace(text)}

	if typ = strings.TrimSpace(typ); typ != "" && typ != allValue {
		t, ok := ParseType(typ)
		if !ok {
			return Filter{}, fmt.Errorf("%w: type %q", ErrInvalidFilter, typ)
		}
		f.Type = t
	}
	if category = strings.TrimSpace(category); category != "" && category != allValue {
		c, ok := ParseCategory(category)
		if !ok {
			return Filter{}, fmt.Errorf("%w: category %q", ErrInvalidFilter, category)
		}
		f.Category = c
	}
	if personID = strings.TrimSpace(personID); personID != allValue {
		f.PersonID = personID
	}
	return f, nil
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Matches reports whether e satisfies every set field of f.
func (f Filter) Matches(e Entry) bool {
	if f.Text != "" && !strings.Contains(strings.ToLower(e.Description), strings.ToLower(f.Text)) {
		return false
	}
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	// An entry without a category never equals a set category.
	if f.Category != CategoryNone && e.Category != f.Category {
		return false
	}
	if f.PersonID != "" && e.PersonID() != f.PersonID {
		return false
	}
	return true
}

// Predicate returns f as a Predicate.
func (f Filter) Predicate() Predicate {
	return f.Matches
}

// And combines predicates conjunctively. With no arguments it matches
// everything.
func And(preds ...Predicate) Predicate {
	return func(e Entry) bool {
		for _, p := range preds {
			if !p(e) {
				return false
			}
		}
		return true
	}
}

// Select returns the entries satisfying pred, in input order. The input is
// never modified.
func Select(entries []Entry, pred Predicate) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// Apply returns the entries matching f, in input order.
func Apply(entries []Entry, f Filter) []Entry {
	return Select(entries, f.Predicate())
}

// Recent returns at most the first n entries. Callers supply entries already
// ordered newest first.
func Recent(entries []Entry, n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]Entry, n)
	copy(out, entries[:n])
	return out
}
