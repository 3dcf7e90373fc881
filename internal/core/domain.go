package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"

	// AllCategories is the goal category sentinel meaning "every category".
	AllCategories = "all"

	// DefaultInsightCategory labels expenses without a category in insights
	// and in the chat snapshot.
	DefaultInsightCategory = "other"
	// DefaultSummaryCategory labels expenses without a category in the
	// category summary view. The two labels differ on purpose.
	DefaultSummaryCategory = "Uncategorized"

	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

type (
	TxType string

	// Transaction is a dated income or expense record owned by one user.
	Transaction struct {
		ID          string `json:"id"`
		Date        string `json:"date"` // YYYY-MM-DD
		Type        TxType `json:"type"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Amount      Amount `json:"amount"`
	}

	// TransactionPatch carries the fields of a partial update. Nil fields are
	// left untouched.
	TransactionPatch struct {
		Date        *string
		Type        *TxType
		Category    *string
		Description *string
		Amount      *Amount
	}

	// Goal is a monthly spending limit scoped to a category or to all of them.
	Goal struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Category    string `json:"category"`
		Month       string `json:"month"` // YYYY-MM
		LimitAmount Amount `json:"limitAmount"`
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date (expected YYYY-MM-DD)")
	ErrInvalidMonth     = errors.New("invalid month (expected YYYY-MM)")
	ErrInvalidType      = errors.New("invalid type (expected income or expense)")
	ErrEmptyName        = errors.New("empty goal name")
	ErrDescriptionLimit = errors.New("description too long (max 200 characters)")
)

// Valid reports whether t is one of the known transaction types.
func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

// CategoryOr returns the transaction category, or def when none is set.
func (t Transaction) CategoryOr(def string) string {
	if t.Category == "" {
		return def
	}
	return t.Category
}

// Validate checks a transaction on the write path. The aggregation engine
// never calls it: stored records are taken as they are.
func (t Transaction) Validate() error {
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return ErrInvalidDate
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if len(t.Description) > 200 {
		return ErrDescriptionLimit
	}
	return t.Amount.Validate()
}

// Apply returns a copy of t with the patch fields applied.
func (p TransactionPatch) Apply(t Transaction) Transaction {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	return t
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Date == nil && p.Type == nil && p.Category == nil && p.Description == nil && p.Amount == nil
}

// CategoryOrAll returns the goal category, defaulting to AllCategories.
func (g Goal) CategoryOrAll() string {
	if g.Category == "" {
		return AllCategories
	}
	return g.Category
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if _, err := time.Parse(MonthLayout, g.Month); err != nil {
		return ErrInvalidMonth
	}
	return g.LimitAmount.Validate()
}

// Matches reports whether tx falls inside the goal scope: an expense dated
// within the goal month and, unless the goal covers all categories, in the
// goal category.
func (g Goal) Matches(tx Transaction) bool {
	if tx.Type != Expense {
		return false
	}
	if tx.Date == "" || g.Month == "" || !strings.HasPrefix(tx.Date, g.Month) {
		return false
	}
	cat := g.CategoryOrAll()
	return cat == AllCategories || tx.Category == cat
}
