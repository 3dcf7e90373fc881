package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/assistant"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/records"
	"fintrack/internal/records/memory"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.RecordChangedMessage
	err  error
}

func (p *fakePublisher) PublishRecordChanged(_ context.Context, msg *amqp.RecordChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

type fakeAssistant struct {
	conversation []insights.Turn
	message      string
	reply        string
	err          error
	calls        int
}

func (a *fakeAssistant) Reply(_ context.Context, conv []insights.Turn, msg string) (string, error) {
	a.calls++
	a.conversation, a.message = conv, msg
	return a.reply, a.err
}

// countingReader records how often the store was read.
type countingReader struct {
	Reader
	reads int
	mu    sync.Mutex
}

func (r *countingReader) ListTransactions(ctx context.Context, uid string) ([]core.Transaction, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Reader.ListTransactions(ctx, uid)
}

func (r *countingReader) ListGoals(ctx context.Context, uid string) ([]core.Goal, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.Reader.ListGoals(ctx, uid)
}

type failingReader struct{}

func (failingReader) ListTransactions(context.Context, string) ([]core.Transaction, error) {
	return nil, errors.New("store down")
}

func (failingReader) ListGoals(context.Context, string) ([]core.Goal, error) {
	return nil, nil
}

func seed(t *testing.T, store records.Store, uid string) {
	t.Helper()
	ctx := context.Background()
	for _, tx := range []core.Transaction{
		{Date: "2024-05-01", Type: core.Income, Category: "salary", Amount: "1000"},
		{Date: "2024-05-02", Type: core.Expense, Category: "food", Amount: "300"},
		{Date: "2024-05-03", Type: core.Expense, Category: "shopping", Amount: "400"},
		{Date: "2024-05-04", Type: core.Expense, Amount: "5"},
	} {
		if _, err := store.CreateTransaction(ctx, uid, tx); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.CreateGoal(ctx, uid, core.Goal{Name: "Food", Category: "food", Month: "2024-05", LimitAmount: "250"}); err != nil {
		t.Fatal(err)
	}
}

func TestRecordServicePublishesAfterWrites(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)

	id, err := svc.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-01", Type: core.Expense, Amount: "1"})
	if err != nil {
		t.Fatal(err)
	}
	amt := core.Amount("2")
	if _, err := svc.UpdateTransaction(ctx, "alice", id, core.TransactionPatch{Amount: &amt}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteTransaction(ctx, "alice", id); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateGoal(ctx, "alice", core.Goal{Name: "All", Month: "2024-05", LimitAmount: "10"}); err != nil {
		t.Fatal(err)
	}

	want := []amqp.RecordAction{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted, amqp.ActionCreated}
	if len(pub.msgs) != len(want) {
		t.Fatalf("published %d messages, want %d", len(pub.msgs), len(want))
	}
	for i, a := range want {
		if pub.msgs[i].Action != a || pub.msgs[i].UserID != "alice" {
			t.Errorf("message %d = %+v", i, pub.msgs[i])
		}
	}
	if pub.msgs[0].ID != id || pub.msgs[3].Kind != amqp.KindGoal {
		t.Errorf("unexpected messages %+v", pub.msgs)
	}
}

func TestRecordServiceDefaultsGoalCategory(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewRecordService(store, nil)
	if _, err := svc.CreateGoal(ctx, "alice", core.Goal{Name: "All", Month: "2024-05", LimitAmount: "10"}); err != nil {
		t.Fatal(err)
	}
	goals, _ := store.ListGoals(ctx, "alice")
	if len(goals) != 1 || goals[0].Category != core.AllCategories {
		t.Fatalf("goals = %+v", goals)
	}
}

func TestRecordServiceIgnoresPublishFailure(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewRecordService(memory.New(), pub)
	if _, err := svc.CreateTransaction(context.Background(), "alice", core.Transaction{Date: "2024-05-01", Type: core.Income, Amount: "1"}); err != nil {
		t.Fatalf("publish failure must not fail the write: %v", err)
	}
}

func TestRecordServiceUpdateNotFound(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewRecordService(memory.New(), pub)
	amt := core.Amount("2")
	_, err := svc.UpdateTransaction(context.Background(), "alice", "nope", core.TransactionPatch{Amount: &amt})
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatal("failed writes must not publish")
	}
}

func TestFinanceServiceViews(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "alice")
	svc := NewFinanceService(store, nil)

	totals, err := svc.Summary(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if totals.TotalIncome != 1000 || totals.TotalSpending != 705 || totals.Balance != 295 {
		t.Fatalf("totals = %+v", totals)
	}

	cats, err := svc.CategorySummary(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 3 || cats[2].Category != core.DefaultSummaryCategory || cats[2].Total != 5 {
		t.Fatalf("categories = %+v", cats)
	}

	progress, err := svc.GoalsWithProgress(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(progress) != 1 || progress[0].SpentAmount != 300 {
		t.Fatalf("progress = %+v", progress)
	}

	report, err := svc.Insights(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Alerts) != 2 || report.Alerts[1].Type != insights.AlertDanger {
		t.Fatalf("alerts = %+v", report.Alerts)
	}

	other, err := svc.Summary(ctx, "bob")
	if err != nil || other != (insights.Totals{}) {
		t.Fatalf("bob should see nothing: %+v %v", other, err)
	}
}

func TestFinanceServiceChat(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seed(t, store, "alice")
	asst := &fakeAssistant{reply: "Cut shopping."}
	svc := NewFinanceService(store, asst)

	history := []insights.Turn{{Role: insights.RoleUser, Content: "hi"}, {Role: insights.RoleAssistant, Content: "hello"}}
	reply, err := svc.Chat(ctx, "alice", "What should I do?", history)
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Cut shopping." || asst.message != "What should I do?" {
		t.Fatalf("reply = %q, message = %q", reply, asst.message)
	}
	if len(asst.conversation) != 3 || !strings.Contains(asst.conversation[0].Content, "Total income: ₹1000.") {
		t.Fatalf("conversation = %+v", asst.conversation)
	}
}

func TestFinanceServiceChatEmptyMessage(t *testing.T) {
	reader := &countingReader{Reader: memory.New()}
	asst := &fakeAssistant{}
	svc := NewFinanceService(reader, asst)

	if _, err := svc.Chat(context.Background(), "alice", "", nil); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
	if reader.reads != 0 || asst.calls != 0 {
		t.Fatalf("empty message must not touch store or assistant: reads=%d calls=%d", reader.reads, asst.calls)
	}
}

func TestFinanceServiceChatAssistantError(t *testing.T) {
	asst := &fakeAssistant{err: errors.New("quota")}
	svc := NewFinanceService(memory.New(), asst)
	if _, err := svc.Chat(context.Background(), "alice", "hi", nil); !errors.Is(err, ErrAssistant) {
		t.Fatalf("expected ErrAssistant, got %v", err)
	}

	svc = NewFinanceService(memory.New(), nil)
	_, err := svc.Chat(context.Background(), "alice", "hi", nil)
	if !errors.Is(err, ErrAssistant) || !errors.Is(err, assistant.ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured wrapped in ErrAssistant, got %v", err)
	}
}

func TestFinanceServiceFetchError(t *testing.T) {
	svc := NewFinanceService(failingReader{}, nil)
	if _, err := svc.Insights(context.Background(), "alice"); err == nil || !strings.Contains(err.Error(), "store down") {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestFinanceServiceMalformedStoredAmount(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	if _, err := store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-01", Type: core.Expense, Amount: "12,5"}); err != nil {
		t.Fatal(err)
	}
	svc := NewFinanceService(store, nil)
	if _, err := svc.Summary(ctx, "alice"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}
