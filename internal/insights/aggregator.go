// Package insights turns one user's transactions and goals into summaries,
// category breakdowns, goal progress, alerts and the chat snapshot.
//
// Everything here is a pure function of its inputs: records are fetched by
// the caller and never modified, and nothing is cached between calls.
package insights

import (
	"fmt"

	"fintrack/internal/core"
)

// Totals is the income/expense reduction of a transaction list.
type Totals struct {
	Balance       float64 `json:"currentBalance"`
	TotalIncome   float64 `json:"totalIncome"`
	TotalSpending float64 `json:"totalSpending"`
}

// Aggregate reduces txs in a single pass. Expenses are also summed per
// category; expenses without a category are filed under defaultCategory.
// Records of unknown type are skipped. A non-numeric amount fails the whole
// aggregation.
func Aggregate(txs []core.Transaction, defaultCategory string) (Totals, *core.CategoryTotals, error) {
	var t Totals
	byCategory := core.NewCategoryTotals()
	for _, tx := range txs {
		amt, err := tx.Amount.Float64()
		if err != nil {
			return Totals{}, nil, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		switch tx.Type {
		case core.Income:
			t.TotalIncome += amt
			t.Balance += amt
		case core.Expense:
			t.TotalSpending += amt
			t.Balance -= amt
			byCategory.Add(tx.CategoryOr(defaultCategory), amt)
		}
	}
	return t, byCategory, nil
}
