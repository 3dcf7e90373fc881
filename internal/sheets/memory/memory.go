package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/sheets"
)

// Ledger collects mirrored rows in memory.
type Ledger struct {
	mu   sync.Mutex
	rows [][]any
}

func New() *Ledger {
	return &Ledger{}
}

// AppendChange stores the row and returns a synthetic row reference.
func (l *Ledger) AppendChange(_ context.Context, c sheets.Change) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, sheets.Row(c))
	return fmt.Sprintf("mem:%d", len(l.rows)), nil
}

// Rows returns a copy of the rows appended so far.
func (l *Ledger) Rows() [][]any {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]any(nil), l.rows...)
}

var _ sheets.LedgerWriter = (*Ledger)(nil)
