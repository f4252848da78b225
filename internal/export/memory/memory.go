// Package memory provides an in-memory TransactionWriter for tests and
// local development without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetly/internal/core"
	ports "budgetly/internal/export"
)

type Writer struct {
	mu   sync.Mutex
	rows []core.Transaction
}

var _ ports.TransactionWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Append(ctx context.Context, t core.Transaction) (string, error) {
	if err := t.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, t)
	return fmt.Sprintf("memory!A%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []core.Transaction {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]core.Transaction, len(w.rows))
	copy(out, w.rows)
	return out
}
