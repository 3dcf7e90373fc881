package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of q running inside tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Transaction struct {
	ID          string
	UserID      string
	Date        string
	Type        string
	Category    string
	Description string
	Amount      string
}

type Goal struct {
	ID          string
	UserID      string
	Name        string
	Category    string
	Month       string
	LimitAmount string
}

const createTransaction = `INSERT INTO transactions (id, user_id, date, type, category, description, amount)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateTransaction(ctx context.Context, arg Transaction) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID, arg.UserID, arg.Date, arg.Type, arg.Category, arg.Description, arg.Amount)
	return err
}

const getTransaction = `SELECT id, user_id, date, type, category, description, amount
FROM transactions WHERE user_id = ? AND id = ?`

func (q *Queries) GetTransaction(ctx context.Context, userID, id string) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, userID, id)
	var t Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.Date, &t.Type, &t.Category, &t.Description, &t.Amount)
	return t, err
}

const listTransactions = `SELECT id, user_id, date, type, category, description, amount
FROM transactions WHERE user_id = ? ORDER BY date, seq`

func (q *Queries) ListTransactions(ctx context.Context, userID string) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Date, &t.Type, &t.Category, &t.Description, &t.Amount); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}

const updateTransaction = `UPDATE transactions
SET date = ?, type = ?, category = ?, description = ?, amount = ?, updated_at = CURRENT_TIMESTAMP
WHERE user_id = ? AND id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg Transaction) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Date, arg.Type, arg.Category, arg.Description, arg.Amount, arg.UserID, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteTransaction = `DELETE FROM transactions WHERE user_id = ? AND id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, userID, id string) error {
	_, err := q.db.ExecContext(ctx, deleteTransaction, userID, id)
	return err
}

const createGoal = `INSERT INTO goals (id, user_id, name, category, month, limit_amount)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateGoal(ctx context.Context, arg Goal) error {
	_, err := q.db.ExecContext(ctx, createGoal,
		arg.ID, arg.UserID, arg.Name, arg.Category, arg.Month, arg.LimitAmount)
	return err
}

const listGoals = `SELECT id, user_id, name, category, month, limit_amount
FROM goals WHERE user_id = ? ORDER BY seq`

func (q *Queries) ListGoals(ctx context.Context, userID string) ([]Goal, error) {
	rows, err := q.db.QueryContext(ctx, listGoals, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Goal
	for rows.Next() {
		var g Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Category, &g.Month, &g.LimitAmount); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return items, rows.Err()
}
