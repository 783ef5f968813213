package ledger

import "github.com/shopspring/decimal"

// Summary holds the running totals of a set of entries.
type Summary struct {
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpense   decimal.Decimal `json:"total_expense"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// CategoryTotals maps an expense category to the summed expense amount.
type CategoryTotals map[Category]decimal.Decimal

// Sum returns the total over all categories.
func (ct CategoryTotals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range ct {
		total = total.Add(v)
	}
	return total
}

// Report combines the summary with the category breakdown.
type Report struct {
	Summary    Summary
	Categories CategoryTotals
}

// Summarize totals income and expense. The balance may be negative.
func Summarize(entries []Entry) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case TypeIncome:
			income = income.Add(e.Amount)
		case TypeExpense:
			expense = expense.Add(e.Amount)
		}
	}
	return Summary{
		TotalIncome:    income,
		TotalExpense:   expense,
		CurrentBalance: income.Sub(expense),
	}
}

// TotalsByCategory sums expense amounts per category. Expenses without a
// category count as miscellaneous; categories on income entries are ignored.
func TotalsByCategory(entries []Entry) CategoryTotals {
	totals := make(CategoryTotals)
	for _, e := range entries {
		if e.Type != TypeExpense {
			continue
		}
		b := e.bucket()
		totals[b] = totals[b].Add(e.Amount)
	}
	return totals
}

// Aggregate computes the summary and the category breakdown in one pass.
func Aggregate(entries []Entry) Report {
	r := Report{Categories: make(CategoryTotals)}
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		switch e.Type {
		case TypeIncome:
			income = income.Add(e.Amount)
		case TypeExpense:
			expense = expense.Add(e.Amount)
			b := e.bucket()
			r.Categories[b] = r.Categories[b].Add(e.Amount)
		}
	}
	r.Summary = Summary{
		TotalIncome:    income,
		TotalExpense:   expense,
		CurrentBalance: income.Sub(expense),
	}
	return r
}
