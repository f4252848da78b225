package memory

import (
	"context"
	"errors"
	"testing"

	"budgetly/internal/budget"
	"budgetly/internal/core"
)

func expense(owner, category string, cents int64, date core.Date) core.Transaction {
	return core.Transaction{
		Owner:    owner,
		Kind:     core.Expense,
		Date:     date,
		Category: category,
		Amount:   core.Money{Cents: cents},
		Title:    "t",
	}
}

func TestPlanUpsertAndActiveLookup(t *testing.T) {
	ctx := context.Background()
	s := New()

	plan := core.Plan{
		Owner:         "u1",
		InitialAmount: core.Money{Cents: 100000},
		StartDate:     core.NewDate(2024, 5, 1),
		EndDate:       core.NewDate(2024, 5, 31),
		Categories:    []core.CategoryLimit{{Name: "Groceries", Limit: core.Money{Cents: 5000}}},
	}
	if err := s.UpsertPlan(ctx, plan); err != nil {
		t.Fatalf("UpsertPlan: %v", err)
	}

	got, err := s.FindActivePlan(ctx, "u1", core.NewDate(2024, 5, 15))
	if err != nil {
		t.Fatalf("FindActivePlan: %v", err)
	}
	if got.Owner != "u1" || len(got.Categories) != 1 {
		t.Errorf("plan = %+v", got)
	}

	// Outside the window: not found even though a plan row exists.
	if _, err := s.FindActivePlan(ctx, "u1", core.NewDate(2024, 6, 1)); !errors.Is(err, budget.ErrNoActivePlan) {
		t.Errorf("out-of-window err = %v, want ErrNoActivePlan", err)
	}
	if _, err := s.FindActivePlan(ctx, "stranger", core.NewDate(2024, 5, 15)); !errors.Is(err, budget.ErrNoActivePlan) {
		t.Errorf("unknown owner err = %v, want ErrNoActivePlan", err)
	}

	// Upsert replaces entirely.
	plan.Categories = []core.CategoryLimit{
		{Name: "Medical", Limit: core.Money{Cents: 100}},
		{Name: "Unexpected", Limit: core.Money{Cents: 200}},
	}
	if err := s.UpsertPlan(ctx, plan); err != nil {
		t.Fatalf("UpsertPlan replace: %v", err)
	}
	got, _ = s.FindActivePlan(ctx, "u1", core.NewDate(2024, 5, 15))
	if len(got.Categories) != 2 || got.Categories[0].Name != "Medical" {
		t.Errorf("replaced plan categories = %v", got.Categories)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.AddTransaction(ctx, expense("u1", "Groceries", 1000, core.NewDate(2024, 5, 2)))
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	if _, err := s.GetTransaction(ctx, "u1", id); err != nil {
		t.Errorf("GetTransaction: %v", err)
	}
	if _, err := s.GetTransaction(ctx, "u2", id); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("cross-owner get err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteTransaction(ctx, "u2", id); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("cross-owner delete err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", id); err != nil {
		t.Errorf("DeleteTransaction: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "u1", id); !errors.Is(err, budget.ErrNotFound) {
		t.Errorf("double delete err = %v, want ErrNotFound", err)
	}
}

func TestListTransactionsLatestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.AddTransaction(ctx, expense("u1", "Groceries", 100, core.NewDate(2024, 5, 1)))
	s.AddTransaction(ctx, expense("u1", "Groceries", 200, core.NewDate(2024, 5, 10)))
	s.AddTransaction(ctx, expense("u1", "Groceries", 300, core.NewDate(2024, 5, 5)))

	income := expense("u1", "Salary", 5000, core.NewDate(2024, 5, 3))
	income.Kind = core.Income
	s.AddTransaction(ctx, income)

	got, err := s.ListTransactions(ctx, "u1", core.Expense)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (income excluded)", len(got))
	}
	if got[0].Amount.Cents != 200 || got[1].Amount.Cents != 300 || got[2].Amount.Cents != 100 {
		t.Errorf("order wrong: %v", got)
	}
}

func TestSumExpensesByCategory(t *testing.T) {
	ctx := context.Background()
	s := New()

	s.AddTransaction(ctx, expense("u1", "Groceries", 1000, core.NewDate(2024, 5, 2)))
	s.AddTransaction(ctx, expense("u1", "Groceries", 500, core.NewDate(2024, 5, 20)))
	s.AddTransaction(ctx, expense("u1", "Medical", 300, core.NewDate(2024, 5, 10)))
	s.AddTransaction(ctx, expense("u1", "Groceries", 9999, core.NewDate(2024, 6, 1)))  // outside window
	s.AddTransaction(ctx, expense("other", "Groceries", 50, core.NewDate(2024, 5, 5))) // other owner

	income := expense("u1", "Groceries", 7777, core.NewDate(2024, 5, 6))
	income.Kind = core.Income
	s.AddTransaction(ctx, income)

	sums, err := s.SumExpensesByCategory(ctx, "u1", core.NewDate(2024, 5, 1), core.NewDate(2024, 5, 31))
	if err != nil {
		t.Fatalf("SumExpensesByCategory: %v", err)
	}
	if sums["Groceries"].Cents != 1500 {
		t.Errorf("Groceries = %d, want 1500", sums["Groceries"].Cents)
	}
	if sums["Medical"].Cents != 300 {
		t.Errorf("Medical = %d, want 300", sums["Medical"].Cents)
	}
	if len(sums) != 2 {
		t.Errorf("unexpected extra categories: %v", sums)
	}
}
