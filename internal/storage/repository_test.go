package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "fintrack.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	second, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
		Date: "2024-05-03", Type: core.Expense, Category: "shopping", Amount: "400.50",
	})
	if err != nil {
		t.Fatal(err)
	}
	first, err := repo.CreateTransaction(ctx, "alice", core.Transaction{
		Date: "2024-05-01", Type: core.Income, Description: "salary", Amount: "1000",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateTransaction(ctx, "bob", core.Transaction{Date: "2024-05-01", Type: core.Income, Amount: "5"}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.ListTransactions(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != first || got[1].ID != second {
		t.Fatalf("expected date order, got %+v", got)
	}
	if got[1].Amount != "400.50" || got[1].Category != "shopping" {
		t.Fatalf("amount literal must be kept: %+v", got[1])
	}
}

func TestSQLiteUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-01", Type: core.Expense, Category: "food", Amount: "10"})
	if err != nil {
		t.Fatal(err)
	}

	cat := "groceries"
	updated, err := repo.UpdateTransaction(ctx, "alice", id, core.TransactionPatch{Category: &cat})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Category != "groceries" || updated.Amount != "10" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if _, err := repo.UpdateTransaction(ctx, "bob", id, core.TransactionPatch{Category: &cat}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}

	if err := repo.DeleteTransaction(ctx, "alice", id); err != nil {
		t.Fatal(err)
	}
	if err := repo.DeleteTransaction(ctx, "alice", id); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
	got, _ := repo.ListTransactions(ctx, "alice")
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}

func TestSQLiteGoals(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.CreateGoal(ctx, "alice", core.Goal{Name: "Food", Category: "food", Month: "2024-05", LimitAmount: "250"}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateGoal(ctx, "alice", core.Goal{Name: "Overall", Month: "2024-05", LimitAmount: "2000"}); err != nil {
		t.Fatal(err)
	}

	goals, err := repo.ListGoals(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(goals) != 2 || goals[0].Name != "Food" || goals[1].Category != core.AllCategories {
		t.Fatalf("unexpected goals: %+v", goals)
	}
	if goals[0].LimitAmount != "250" {
		t.Fatalf("limit = %q", goals[0].LimitAmount)
	}
}

func TestRunMigrationsIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatal(err)
	}
	repo.Close()
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run should be a no-op: %v", err)
	}
}
