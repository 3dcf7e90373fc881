package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/assistant"
	"fintrack/internal/core"
	"fintrack/internal/insights"
	"fintrack/internal/records"
)

var (
	ErrEmptyMessage = errors.New("message is required")
	// ErrAssistant wraps every failure of the reply generator, including a
	// missing configuration.
	ErrAssistant = errors.New("assistant request failed")
)

// Reader is the read side of the record store.
type Reader interface {
	records.TransactionReader
	records.GoalReader
}

// Assistant produces a reply to message given the prepared conversation.
type Assistant interface {
	Reply(ctx context.Context, conversation []insights.Turn, message string) (string, error)
}

// FinanceService fetches one user's records per call and derives views from
// them. Nothing is cached: every call reflects the store as it is.
type FinanceService struct {
	reader    Reader
	assistant Assistant
}

func NewFinanceService(reader Reader, assistant Assistant) *FinanceService {
	return &FinanceService{reader: reader, assistant: assistant}
}

func (s *FinanceService) Summary(ctx context.Context, uid string) (insights.Totals, error) {
	txs, err := s.reader.ListTransactions(ctx, uid)
	if err != nil {
		return insights.Totals{}, fmt.Errorf("list transactions: %w", err)
	}
	totals, _, err := insights.Aggregate(txs, core.DefaultSummaryCategory)
	return totals, err
}

// CategorySummary lists expense totals per category in first-seen order.
func (s *FinanceService) CategorySummary(ctx context.Context, uid string) ([]core.CategoryAmount, error) {
	txs, err := s.reader.ListTransactions(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	_, byCategory, err := insights.Aggregate(txs, core.DefaultSummaryCategory)
	if err != nil {
		return nil, err
	}
	return byCategory.Entries(), nil
}

func (s *FinanceService) GoalsWithProgress(ctx context.Context, uid string) ([]insights.GoalProgress, error) {
	txs, goals, err := s.fetch(ctx, uid)
	if err != nil {
		return nil, err
	}
	return insights.Progress(goals, txs)
}

func (s *FinanceService) Insights(ctx context.Context, uid string) (insights.Report, error) {
	txs, goals, err := s.fetch(ctx, uid)
	if err != nil {
		return insights.Report{}, err
	}
	return insights.Generate(txs, goals)
}

// Chat answers message using the user's current snapshot and the prior turns.
// An empty message is rejected before anything is fetched.
func (s *FinanceService) Chat(ctx context.Context, uid, message string, history []insights.Turn) (string, error) {
	if message == "" {
		return "", ErrEmptyMessage
	}
	if s.assistant == nil {
		return "", fmt.Errorf("%w: %w", ErrAssistant, assistant.ErrNotConfigured)
	}
	txs, goals, err := s.fetch(ctx, uid)
	if err != nil {
		return "", err
	}
	snapshot, err := insights.BuildSnapshot(txs, goals)
	if err != nil {
		return "", err
	}
	reply, err := s.assistant.Reply(ctx, insights.BuildConversation(snapshot, history), message)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAssistant, err)
	}
	return reply, nil
}

// fetch loads transactions and goals concurrently.
func (s *FinanceService) fetch(ctx context.Context, uid string) ([]core.Transaction, []core.Goal, error) {
	var (
		txs   []core.Transaction
		goals []core.Goal
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if txs, err = s.reader.ListTransactions(ctx, uid); err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if goals, err = s.reader.ListGoals(ctx, uid); err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return txs, goals, nil
}
