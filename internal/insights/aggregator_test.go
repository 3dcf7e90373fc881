package insights

import (
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestAggregateEmpty(t *testing.T) {
	totals, cats, err := Aggregate(nil, core.DefaultSummaryCategory)
	if err != nil {
		t.Fatal(err)
	}
	if totals != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
	if cats.Len() != 0 {
		t.Fatalf("expected no categories, got %d", cats.Len())
	}
}

func TestAggregateScenario(t *testing.T) {
	totals, cats, err := Aggregate(mayScenario(), core.DefaultSummaryCategory)
	if err != nil {
		t.Fatal(err)
	}
	want := Totals{Balance: 300, TotalIncome: 1000, TotalSpending: 700}
	if totals != want {
		t.Fatalf("totals = %+v, want %+v", totals, want)
	}
	if _, ok := cats.Get("salary"); ok {
		t.Fatal("income category must not appear in category totals")
	}
	entries := cats.Entries()
	if len(entries) != 2 || entries[0].Category != "food" || entries[1].Category != "shopping" {
		t.Fatalf("unexpected entries %v", entries)
	}
}

func TestAggregateBalanceIdentity(t *testing.T) {
	lists := [][]core.Transaction{
		nil,
		mayScenario(),
		{expense("a", "2024-01-01", "rent", "0.1"), expense("b", "2024-01-02", "rent", "0.2"), income("c", "2024-01-03", "0.3")},
		{income("a", "2024-01-01", "1e6"), {ID: "x", Type: "transfer", Amount: "50"}},
	}
	for i, txs := range lists {
		totals, _, err := Aggregate(txs, core.DefaultInsightCategory)
		if err != nil {
			t.Fatalf("case %d: %v", i, err)
		}
		if totals.Balance != totals.TotalIncome-totals.TotalSpending {
			t.Errorf("case %d: balance %v != %v - %v", i, totals.Balance, totals.TotalIncome, totals.TotalSpending)
		}
	}
}

func TestAggregateDefaultCategoryPerCallSite(t *testing.T) {
	txs := []core.Transaction{{ID: "a", Date: "2024-05-01", Type: core.Expense, Amount: "10"}}

	_, cats, _ := Aggregate(txs, core.DefaultSummaryCategory)
	if _, ok := cats.Get("Uncategorized"); !ok {
		t.Fatal("summary view should file under Uncategorized")
	}
	_, cats, _ = Aggregate(txs, core.DefaultInsightCategory)
	if _, ok := cats.Get("other"); !ok {
		t.Fatal("insights should file under other")
	}
}

func TestAggregateIgnoresUnknownType(t *testing.T) {
	totals, cats, err := Aggregate([]core.Transaction{{ID: "x", Type: "refund", Amount: "99"}}, core.DefaultInsightCategory)
	if err != nil {
		t.Fatal(err)
	}
	if totals != (Totals{}) || cats.Len() != 0 {
		t.Fatalf("unknown type should be ignored, got %+v", totals)
	}
}

func TestAggregateMalformedAmount(t *testing.T) {
	txs := append(mayScenario(), expense("bad", "2024-05-04", "food", "twelve"))
	_, _, err := Aggregate(txs, core.DefaultInsightCategory)
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
