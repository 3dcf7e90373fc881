package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/records"
)

// Store keeps records in process memory, partitioned by user.
type Store struct {
	mu    sync.Mutex
	users map[string]*userRecords
}

type userRecords struct {
	txs   []core.Transaction
	goals []core.Goal
}

func New() *Store {
	return &Store{users: make(map[string]*userRecords)}
}

func (s *Store) user(uid string) *userRecords {
	u, ok := s.users[uid]
	if !ok {
		u = &userRecords{}
		s.users[uid] = u
	}
	return u
}

func (s *Store) CreateTransaction(_ context.Context, uid string, tx core.Transaction) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx.ID = uuid.NewString()
	u := s.user(uid)
	u.txs = append(u.txs, tx)
	return tx.ID, nil
}

// ListTransactions returns a copy ordered by date; equal dates keep insertion order.
func (s *Store) ListTransactions(_ context.Context, uid string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return []core.Transaction{}, nil
	}
	out := slices.Clone(u.txs)
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, uid, id string, patch core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return core.Transaction{}, records.ErrNotFound
	}
	i := slices.IndexFunc(u.txs, func(t core.Transaction) bool { return t.ID == id })
	if i < 0 {
		return core.Transaction{}, records.ErrNotFound
	}
	u.txs[i] = patch.Apply(u.txs[i])
	return u.txs[i], nil
}

func (s *Store) DeleteTransaction(_ context.Context, uid, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[uid]; ok {
		u.txs = slices.DeleteFunc(u.txs, func(t core.Transaction) bool { return t.ID == id })
	}
	return nil
}

func (s *Store) CreateGoal(_ context.Context, uid string, g core.Goal) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uuid.NewString()
	u := s.user(uid)
	u.goals = append(u.goals, g)
	return g.ID, nil
}

func (s *Store) ListGoals(_ context.Context, uid string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[uid]
	if !ok {
		return []core.Goal{}, nil
	}
	return slices.Clone(u.goals), nil
}

var _ records.Store = (*Store)(nil)
