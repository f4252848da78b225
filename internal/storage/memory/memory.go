// Package memory is an in-memory budget.Store used for tests and as the
// default development backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"budgetly/internal/budget"
	"budgetly/internal/core"
)

type Store struct {
	mu     sync.Mutex
	plans  map[string]core.Plan
	items  map[int64]core.Transaction
	nextID int64
}

var _ budget.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		plans:  make(map[string]core.Plan),
		items:  make(map[int64]core.Transaction),
		nextID: 1,
	}
}

func (s *Store) UpsertPlan(_ context.Context, p core.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Full replacement: categories are copied so callers cannot mutate them.
	stored := p
	stored.Categories = append([]core.CategoryLimit(nil), p.Categories...)
	s.plans[p.Owner] = stored
	return nil
}

func (s *Store) FindActivePlan(_ context.Context, owner string, asOf core.Date) (core.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[owner]
	if !ok || !p.ActiveAt(asOf) {
		return core.Plan{}, budget.ErrNoActivePlan
	}
	out := p
	out.Categories = append([]core.CategoryLimit(nil), p.Categories...)
	return out, nil
}

func (s *Store) AddTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.items[t.ID] = t
	return t.ID, nil
}

func (s *Store) DeleteTransaction(_ context.Context, owner string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok || t.Owner != owner {
		return budget.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *Store) GetTransaction(_ context.Context, owner string, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.items[id]
	if !ok || t.Owner != owner {
		return core.Transaction{}, budget.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.items {
		if t.Owner == owner && t.Kind == kind {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) SumExpensesByCategory(_ context.Context, owner string, from, to core.Date) (map[string]core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sums := make(map[string]core.Money)
	for _, t := range s.items {
		if t.Owner != owner || t.Kind != core.Expense {
			continue
		}
		if t.Date.Before(from.Time) || t.Date.After(to.Time) {
			continue
		}
		m := sums[t.Category]
		m.Cents += t.Amount.Cents
		sums[t.Category] = m
	}
	return sums, nil
}
