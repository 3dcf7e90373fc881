package insights

import (
	"fmt"

	"fintrack/internal/core"
)

// GoalProgress annotates a goal with what has been spent against it.
type GoalProgress struct {
	core.Goal
	SpentAmount float64 `json:"spentAmount"`
}

// SpentAmount sums the expenses inside the goal scope.
func SpentAmount(g core.Goal, txs []core.Transaction) (float64, error) {
	var spent float64
	for _, tx := range txs {
		if !g.Matches(tx) {
			continue
		}
		amt, err := tx.Amount.Float64()
		if err != nil {
			return 0, fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
		spent += amt
	}
	return spent, nil
}

// Ratio returns spent as a percentage of limit, or 0 when there is no
// positive limit.
func Ratio(spent, limit float64) float64 {
	if limit <= 0 {
		return 0
	}
	return spent / limit * 100
}

// Progress evaluates every goal against the same transaction list.
func Progress(goals []core.Goal, txs []core.Transaction) ([]GoalProgress, error) {
	out := make([]GoalProgress, 0, len(goals))
	for _, g := range goals {
		spent, err := SpentAmount(g, txs)
		if err != nil {
			return nil, fmt.Errorf("goal %s: %w", g.ID, err)
		}
		out = append(out, GoalProgress{Goal: g, SpentAmount: spent})
	}
	return out, nil
}
