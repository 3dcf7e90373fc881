package insights

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

const (
	assistantPreamble = "You are a helpful personal finance assistant for an Indian user. " +
		"Use the data I give you (income, expenses, goals) to answer questions. " +
		"Give specific, practical suggestions. Keep answers short (2–4 sentences).\n\n"

	noGoalsText = "No monthly goals defined."
)

// BuildSnapshot renders the financial snapshot handed to the assistant: the
// preamble, rounded income and expense totals, spending per category in
// first-seen order and the goal list.
func BuildSnapshot(txs []core.Transaction, goals []core.Goal) (string, error) {
	totals, byCategory, err := Aggregate(txs, core.DefaultInsightCategory)
	if err != nil {
		return "", err
	}

	cats := make([]string, 0, byCategory.Len())
	for cat, amt := range byCategory.All() {
		cats = append(cats, cat+"="+core.FormatRupees(amt))
	}
	snapshot := fmt.Sprintf("Total income: %s. Total expenses: %s. Spending by category: %s",
		core.FormatRupees(totals.TotalIncome),
		core.FormatRupees(totals.TotalSpending),
		strings.Join(cats, ", "))

	goalsText, err := describeGoals(goals)
	if err != nil {
		return "", err
	}
	return assistantPreamble + "Current snapshot:\n" + snapshot + "\nGoals: " + goalsText, nil
}

func describeGoals(goals []core.Goal) (string, error) {
	if len(goals) == 0 {
		return noGoalsText, nil
	}
	parts := make([]string, 0, len(goals))
	for _, g := range goals {
		limit, err := g.LimitAmount.Float64()
		if err != nil {
			return "", fmt.Errorf("goal %s limit: %w", g.ID, err)
		}
		parts = append(parts, fmt.Sprintf("%s (cat=%s, month=%s, limit=%s)",
			g.Name, g.CategoryOrAll(), g.Month, core.FormatRupees(limit)))
	}
	return strings.Join(parts, " | "), nil
}

// BuildConversation returns the history sent ahead of the user's message.
// The snapshot always comes first as a user turn; prior turns follow in order.
// Turns with empty content or an unknown role are dropped.
func BuildConversation(snapshot string, history []Turn) []Turn {
	out := make([]Turn, 0, len(history)+1)
	out = append(out, Turn{Role: RoleUser, Content: snapshot})
	for _, t := range history {
		if t.Content == "" {
			continue
		}
		switch t.Role {
		case RoleUser, RoleAssistant:
			out = append(out, t)
		}
	}
	return out
}
