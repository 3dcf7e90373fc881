package services

import (
	"context"
	"fmt"
	"log/slog"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/records"
)

// Publisher announces record changes. *amqp.Client implements it.
type Publisher interface {
	PublishRecordChanged(ctx context.Context, msg *amqp.RecordChangedMessage) error
}

// RecordService is the write path: it stores records and then publishes a
// change event. The store is the source of truth, so a failed publish is
// logged and never fails the write.
type RecordService struct {
	records.Store
	publisher Publisher
}

// NewRecordService wraps store. publisher may be nil when messaging is off.
func NewRecordService(store records.Store, publisher Publisher) *RecordService {
	return &RecordService{Store: store, publisher: publisher}
}

func (s *RecordService) CreateTransaction(ctx context.Context, uid string, tx core.Transaction) (string, error) {
	id, err := s.Store.CreateTransaction(ctx, uid, tx)
	if err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(uid, amqp.KindTransaction, id, amqp.ActionCreated))
	return id, nil
}

func (s *RecordService) UpdateTransaction(ctx context.Context, uid, id string, patch core.TransactionPatch) (core.Transaction, error) {
	tx, err := s.Store.UpdateTransaction(ctx, uid, id, patch)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(uid, amqp.KindTransaction, id, amqp.ActionUpdated))
	return tx, nil
}

func (s *RecordService) DeleteTransaction(ctx context.Context, uid, id string) error {
	if err := s.Store.DeleteTransaction(ctx, uid, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(uid, amqp.KindTransaction, id, amqp.ActionDeleted))
	return nil
}

func (s *RecordService) CreateGoal(ctx context.Context, uid string, g core.Goal) (string, error) {
	if g.Category == "" {
		g.Category = core.AllCategories
	}
	id, err := s.Store.CreateGoal(ctx, uid, g)
	if err != nil {
		return "", fmt.Errorf("save goal: %w", err)
	}
	s.publish(ctx, amqp.NewRecordChangedMessage(uid, amqp.KindGoal, id, amqp.ActionCreated))
	return id, nil
}

func (s *RecordService) publish(ctx context.Context, msg *amqp.RecordChangedMessage) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record change",
			"kind", msg.Kind,
			"id", msg.ID,
			"action", msg.Action,
			"error", err)
	}
}

var _ records.Store = (*RecordService)(nil)
