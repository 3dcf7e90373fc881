// Package records declares the record store ports. Every call is scoped to
// one user identifier; a store never returns another user's records.
package records

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

var ErrNotFound = errors.New("record not found")

type (
	TransactionReader interface {
		// ListTransactions returns every transaction of the user ordered by date.
		ListTransactions(ctx context.Context, uid string) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// CreateTransaction stores tx and returns its new identifier.
		CreateTransaction(ctx context.Context, uid string, tx core.Transaction) (string, error)
		// UpdateTransaction applies patch to an existing transaction and
		// returns the updated record. Unknown ids yield ErrNotFound.
		UpdateTransaction(ctx context.Context, uid, id string, patch core.TransactionPatch) (core.Transaction, error)
		// DeleteTransaction removes a transaction. Deleting an unknown id is not an error.
		DeleteTransaction(ctx context.Context, uid, id string) error
	}

	GoalReader interface {
		// ListGoals returns the user's goals in creation order.
		ListGoals(ctx context.Context, uid string) ([]core.Goal, error)
	}

	GoalWriter interface {
		CreateGoal(ctx context.Context, uid string, g core.Goal) (string, error)
	}

	// Store is the full record store used by the HTTP server.
	Store interface {
		TransactionReader
		TransactionWriter
		GoalReader
		GoalWriter
	}
)
