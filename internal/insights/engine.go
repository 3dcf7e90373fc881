package insights

import (
	"fmt"
	"slices"

	"fintrack/internal/core"
)

type AlertType string

const (
	AlertWarning AlertType = "warning"
	AlertDanger  AlertType = "danger"
)

const (
	// flexLimitPercent is the share of income lifestyle spending may reach
	// before it is flagged.
	flexLimitPercent = 30
	// savingsTarget is the share of income the savings rule asks for.
	savingsTarget = 0.2

	goalWarnPercent   = 80
	goalDangerPercent = 100
)

// flexCategories are the lifestyle categories watched by the flex rule.
// Matching is case-sensitive and the list carries both "Food" and "food" on
// purpose: it mirrors the labels users actually enter. Do not case-fold.
var flexCategories = []string{"entertainment", "shopping", "Food", "food"}

const (
	msgNoTransactions = "No transactions yet. Add income and expenses to get insights."
	msgSurplus        = "Your income exceeds expenses by %s for the current period."
	msgDeficit        = "Your expenses exceed income by %s. Reduce non‑essential spending to avoid cash‑flow stress."
	msgFlexSuggestion = "Entertainment and shopping are about %s of income. Try to keep them under 30%% and move the difference into savings."
	msgFlexAlert      = "High lifestyle spending detected (entertainment/shopping)."
	msgGoalExceeded   = "You have exceeded the limit for '%s' (%s of monthly limit)."
	msgGoalNear       = "'%s' is at %s of its monthly limit."
	msgSavings        = "Aim to save at least 20% of income. Trim one or two discretionary categories next month to reach this level."
)

type Alert struct {
	Type    AlertType `json:"type"`
	Message string    `json:"message"`
}

// Report is the insight card: a one-line summary, suggestions and alerts in
// rule evaluation order.
type Report struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
	Alerts      []Alert  `json:"alerts"`
}

// Generate runs the insight rules over one user's records. Goals are visited
// in the order given.
func Generate(txs []core.Transaction, goals []core.Goal) (Report, error) {
	totals, byCategory, err := Aggregate(txs, core.DefaultInsightCategory)
	if err != nil {
		return Report{}, err
	}
	income, expense := totals.TotalIncome, totals.TotalSpending

	r := Report{
		Summary:     summarize(income, expense),
		Suggestions: []string{},
		Alerts:      []Alert{},
	}

	var flexSpend float64
	for cat, amt := range byCategory.All() {
		if slices.Contains(flexCategories, cat) {
			flexSpend += amt
		}
	}
	flexRatio := Ratio(flexSpend, income)
	if income > 0 && flexRatio > flexLimitPercent {
		r.Suggestions = append(r.Suggestions, fmt.Sprintf(msgFlexSuggestion, core.FormatPercent(flexRatio)))
		r.Alerts = append(r.Alerts, Alert{Type: AlertWarning, Message: msgFlexAlert})
	}

	for _, g := range goals {
		alert, ok, err := goalAlert(g, txs)
		if err != nil {
			return Report{}, err
		}
		if ok {
			r.Alerts = append(r.Alerts, alert)
		}
	}

	if income > 0 && income-expense < income*savingsTarget {
		r.Suggestions = append(r.Suggestions, msgSavings)
	}
	return r, nil
}

func summarize(income, expense float64) string {
	if income == 0 && expense == 0 {
		return msgNoTransactions
	}
	delta := income - expense
	if delta >= 0 {
		return fmt.Sprintf(msgSurplus, core.FormatRupees(delta))
	}
	return fmt.Sprintf(msgDeficit, core.FormatRupees(-delta))
}

// goalAlert yields at most one alert per goal; danger wins over warning.
func goalAlert(g core.Goal, txs []core.Transaction) (Alert, bool, error) {
	limit, err := g.LimitAmount.Float64()
	if err != nil {
		return Alert{}, false, fmt.Errorf("goal %s limit: %w", g.ID, err)
	}
	spent, err := SpentAmount(g, txs)
	if err != nil {
		return Alert{}, false, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	if limit <= 0 {
		return Alert{}, false, nil
	}
	ratio := Ratio(spent, limit)
	switch {
	case ratio >= goalDangerPercent:
		return Alert{Type: AlertDanger, Message: fmt.Sprintf(msgGoalExceeded, g.Name, core.FormatPercent(ratio))}, true, nil
	case ratio >= goalWarnPercent:
		return Alert{Type: AlertWarning, Message: fmt.Sprintf(msgGoalNear, g.Name, core.FormatPercent(ratio))}, true, nil
	}
	return Alert{}, false, nil
}
