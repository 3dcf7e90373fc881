package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/records"
	"fintrack/internal/sheets"
)

// Reader is the record store view the worker needs.
type Reader interface {
	records.TransactionReader
	records.GoalReader
}

// AlertWorker reacts to record changes: it mirrors transaction changes to the
// ledger (when one is configured) and re-evaluates the user's alerts.
type AlertWorker struct {
	reader Reader
	ledger sheets.LedgerWriter
	logger *slog.Logger
}

// NewAlertWorker builds a worker. ledger may be nil.
func NewAlertWorker(reader Reader, ledger sheets.LedgerWriter, logger *slog.Logger) *AlertWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertWorker{reader: reader, ledger: ledger, logger: logger}
}

// HandleRecordChanged processes one message. Returning an error requeues it,
// so only transient failures (store, spreadsheet) are returned; records that
// can never be evaluated are logged and acknowledged. Every read happens
// before the ledger append, so a requeued message has not been mirrored yet.
func (w *AlertWorker) HandleRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error {
	txs, err := w.reader.ListTransactions(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	goals, err := w.reader.ListGoals(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	report, genErr := insights.Generate(txs, goals)
	if genErr != nil && !errors.Is(genErr, core.ErrInvalidAmount) {
		return fmt.Errorf("generate insights: %w", genErr)
	}

	if msg.Kind == amqp.KindTransaction && w.ledger != nil {
		if err := w.mirror(ctx, msg, txs); err != nil {
			return err
		}
	}

	if genErr != nil {
		w.logger.ErrorContext(ctx, "Cannot evaluate alerts, stored record has a malformed amount",
			"user_id", msg.UserID,
			"error", genErr)
		return nil
	}

	for _, a := range report.Alerts {
		level := slog.LevelWarn
		if a.Type == insights.AlertDanger {
			level = slog.LevelError
		}
		w.logger.Log(ctx, level, "Spending alert",
			"user_id", msg.UserID,
			"alert_type", a.Type,
			"message", a.Message)
	}
	w.logger.InfoContext(ctx, "Record change processed",
		"user_id", msg.UserID,
		"kind", msg.Kind,
		"id", msg.ID,
		"action", msg.Action,
		"alerts", len(report.Alerts))
	return nil
}

func (w *AlertWorker) mirror(ctx context.Context, msg *amqp.RecordChangedMessage, txs []core.Transaction) error {
	change := sheets.Change{
		At:          msg.Timestamp,
		Action:      string(msg.Action),
		UserID:      msg.UserID,
		Transaction: core.Transaction{ID: msg.ID},
	}
	if msg.Action != amqp.ActionDeleted {
		i := slices.IndexFunc(txs, func(t core.Transaction) bool { return t.ID == msg.ID })
		if i < 0 {
			// Deleted before the event was consumed; the delete event will be mirrored.
			w.logger.DebugContext(ctx, "Transaction no longer exists, skipping mirror", "id", msg.ID)
			return nil
		}
		change.Transaction = txs[i]
	}
	ref, err := w.ledger.AppendChange(ctx, change)
	if err != nil {
		return fmt.Errorf("mirror transaction %s: %w", msg.ID, err)
	}
	w.logger.DebugContext(ctx, "Transaction mirrored", "id", msg.ID, "ref", ref)
	return nil
}
