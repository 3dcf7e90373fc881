package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateTransaction implements records.TransactionWriter
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, uid string, tx core.Transaction) (string, error) {
	row := toRow(uid, tx)
	row.ID = uuid.NewString()
	if err := r.queries.CreateTransaction(ctx, row); err != nil {
		return "", fmt.Errorf("create transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", row.ID,
		"type", row.Type,
		"date", row.Date)

	return row.ID, nil
}

// ListTransactions implements records.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context, uid string) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

// UpdateTransaction reads, patches and writes back inside one transaction.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, uid, id string, patch core.TransactionPatch) (core.Transaction, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin: %w", err)
	}
	defer sqlTx.Rollback()

	q := r.queries.WithTx(sqlTx)
	current, err := q.GetTransaction(ctx, uid, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, records.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w", id, err)
	}

	updated := patch.Apply(fromRow(current))
	if _, err := q.UpdateTransaction(ctx, toRow(uid, updated)); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

// DeleteTransaction implements records.TransactionWriter
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, uid, id string) error {
	if err := r.queries.DeleteTransaction(ctx, uid, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

// CreateGoal implements records.GoalWriter
func (r *SQLiteRepository) CreateGoal(ctx context.Context, uid string, g core.Goal) (string, error) {
	id := uuid.NewString()
	err := r.queries.CreateGoal(ctx, Goal{
		ID:          id,
		UserID:      uid,
		Name:        g.Name,
		Category:    g.CategoryOrAll(),
		Month:       g.Month,
		LimitAmount: string(g.LimitAmount),
	})
	if err != nil {
		return "", fmt.Errorf("create goal: %w", err)
	}
	return id, nil
}

// ListGoals implements records.GoalReader
func (r *SQLiteRepository) ListGoals(ctx context.Context, uid string) ([]core.Goal, error) {
	rows, err := r.queries.ListGoals(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	out := make([]core.Goal, len(rows))
	for i, g := range rows {
		out[i] = core.Goal{
			ID:          g.ID,
			Name:        g.Name,
			Category:    g.Category,
			Month:       g.Month,
			LimitAmount: core.Amount(g.LimitAmount),
		}
	}
	return out, nil
}

func toRow(uid string, tx core.Transaction) Transaction {
	return Transaction{
		ID:          tx.ID,
		UserID:      uid,
		Date:        tx.Date,
		Type:        string(tx.Type),
		Category:    tx.Category,
		Description: tx.Description,
		Amount:      string(tx.Amount),
	}
}

func fromRow(row Transaction) core.Transaction {
	return core.Transaction{
		ID:          row.ID,
		Date:        row.Date,
		Type:        core.TxType(row.Type),
		Category:    row.Category,
		Description: row.Description,
		Amount:      core.Amount(row.Amount),
	}
}

var _ records.Store = (*SQLiteRepository)(nil)
