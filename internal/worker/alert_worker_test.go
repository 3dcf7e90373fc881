package worker

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	recmem "fintrack/internal/records/memory"
	"fintrack/internal/sheets"
	sheetmem "fintrack/internal/sheets/memory"
)

func newTestWorker(t *testing.T, ledger sheets.LedgerWriter) (*AlertWorker, *recmem.Store, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	store := recmem.New()
	return NewAlertWorker(store, ledger, logger), store, &buf
}

type failingLedger struct{}

func (failingLedger) AppendChange(context.Context, sheets.Change) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestHandleRecordChangedLogsAlerts(t *testing.T) {
	ctx := context.Background()
	ledger := sheetmem.New()
	w, store, logs := newTestWorker(t, ledger)

	store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-01", Type: core.Income, Amount: "1000"})
	id, _ := store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-02", Type: core.Expense, Category: "food", Amount: "300"})
	store.CreateGoal(ctx, "alice", core.Goal{Name: "Food", Category: "food", Month: "2024-05", LimitAmount: "250"})

	msg := amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, id, amqp.ActionCreated)
	if err := w.HandleRecordChanged(ctx, msg); err != nil {
		t.Fatal(err)
	}

	out := logs.String()
	if !strings.Contains(out, "You have exceeded the limit for 'Food'") {
		t.Fatalf("expected goal alert in logs:\n%s", out)
	}
	rows := ledger.Rows()
	if len(rows) != 1 || rows[0][3] != id || rows[0][6] != "food" {
		t.Fatalf("ledger rows = %v", rows)
	}
}

func TestHandleRecordChangedMirrorsDeletes(t *testing.T) {
	ledger := sheetmem.New()
	w, _, _ := newTestWorker(t, ledger)

	msg := amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, "gone", amqp.ActionDeleted)
	if err := w.HandleRecordChanged(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	rows := ledger.Rows()
	if len(rows) != 1 || rows[0][1] != "deleted" || rows[0][3] != "gone" {
		t.Fatalf("ledger rows = %v", rows)
	}
}

func TestHandleRecordChangedSkipsVanishedTransaction(t *testing.T) {
	ledger := sheetmem.New()
	w, _, _ := newTestWorker(t, ledger)

	msg := amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, "vanished", amqp.ActionUpdated)
	if err := w.HandleRecordChanged(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if len(ledger.Rows()) != 0 {
		t.Fatal("nothing to mirror for a vanished transaction")
	}
}

func TestHandleRecordChangedGoalsAreNotMirrored(t *testing.T) {
	ledger := sheetmem.New()
	w, _, _ := newTestWorker(t, ledger)

	msg := amqp.NewRecordChangedMessage("alice", amqp.KindGoal, "g1", amqp.ActionCreated)
	if err := w.HandleRecordChanged(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if len(ledger.Rows()) != 0 {
		t.Fatal("goal changes must not reach the ledger")
	}
}

func TestHandleRecordChangedLedgerFailureRequeues(t *testing.T) {
	ctx := context.Background()
	w, store, _ := newTestWorker(t, failingLedger{})
	id, _ := store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-02", Type: core.Expense, Amount: "3"})

	err := w.HandleRecordChanged(ctx, amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, id, amqp.ActionCreated))
	if err == nil {
		t.Fatal("ledger failure should be returned so the message is requeued")
	}
}

type goalsErrorReader struct {
	*recmem.Store
}

func (goalsErrorReader) ListGoals(context.Context, string) ([]core.Goal, error) {
	return nil, errors.New("database is locked")
}

func TestHandleRecordChangedReadFailureDoesNotMirror(t *testing.T) {
	ctx := context.Background()
	ledger := sheetmem.New()
	store := recmem.New()
	w := NewAlertWorker(goalsErrorReader{store}, ledger, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	id, _ := store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-02", Type: core.Expense, Amount: "3"})
	msg := amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, id, amqp.ActionCreated)

	for range 2 {
		if err := w.HandleRecordChanged(ctx, msg); err == nil {
			t.Fatal("goal read failure should be returned so the message is requeued")
		}
	}
	if rows := ledger.Rows(); len(rows) != 0 {
		t.Fatalf("redelivered message was mirrored %d times", len(rows))
	}
}

func TestHandleRecordChangedMalformedAmountIsAcknowledged(t *testing.T) {
	ctx := context.Background()
	ledger := sheetmem.New()
	w, store, logs := newTestWorker(t, ledger)
	id, _ := store.CreateTransaction(ctx, "alice", core.Transaction{Date: "2024-05-02", Type: core.Expense, Amount: "n/a"})

	err := w.HandleRecordChanged(ctx, amqp.NewRecordChangedMessage("alice", amqp.KindTransaction, id, amqp.ActionCreated))
	if err != nil {
		t.Fatalf("data errors must not requeue: %v", err)
	}
	if !strings.Contains(logs.String(), "malformed amount") {
		t.Fatalf("expected data error log:\n%s", logs.String())
	}
	if len(ledger.Rows()) != 1 {
		t.Fatalf("the change should still be mirrored, rows = %v", ledger.Rows())
	}
}
