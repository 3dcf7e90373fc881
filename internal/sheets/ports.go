package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Change is one row of the transaction ledger mirrored to a spreadsheet.
// Deletions carry only the transaction id.
type Change struct {
	At          time.Time
	Action      string
	UserID      string
	Transaction core.Transaction
}

// Ports for outbound adapters.
type (
	LedgerWriter interface {
		AppendChange(ctx context.Context, c Change) (rowRef string, err error)
	}
)

// Header is the column layout of the ledger sheet.
var Header = []string{"Timestamp", "Action", "User", "ID", "Date", "Type", "Category", "Description", "Amount"}

// Row renders c in Header order. Amounts are written as numbers when they
// coerce so the spreadsheet can sum them.
func Row(c Change) []any {
	tx := c.Transaction
	var amount any = string(tx.Amount)
	if f, err := tx.Amount.Float64(); err == nil && tx.Amount != "" {
		amount = f
	}
	return []any{
		c.At.UTC().Format(time.RFC3339),
		c.Action,
		c.UserID,
		tx.ID,
		tx.Date,
		string(tx.Type),
		tx.Category,
		tx.Description,
		amount,
	}
}
