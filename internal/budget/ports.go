// Package budget declares the outbound ports the planner needs: a plan
// repository and a transaction store. Storage backends implement both.
package budget

import (
	"context"
	"errors"

	"budgetly/internal/core"
)

var (
	// ErrNoActivePlan means the owner has no plan whose window contains the
	// query date. Distinct from an empty progress payload.
	ErrNoActivePlan = errors.New("no active planner found")

	// ErrNotFound means the requested record does not exist for this owner.
	ErrNotFound = errors.New("not found")
)

type (
	// PlanRepository holds at most one plan per owner.
	PlanRepository interface {
		// UpsertPlan replaces the owner's plan entirely. Last write wins.
		UpsertPlan(ctx context.Context, p core.Plan) error

		// FindActivePlan returns the owner's plan when its window contains
		// asOf, or ErrNoActivePlan.
		FindActivePlan(ctx context.Context, owner string, asOf core.Date) (core.Plan, error)
	}

	// TransactionStore holds expense and income records, queryable by owner
	// with sum aggregation by category.
	TransactionStore interface {
		AddTransaction(ctx context.Context, t core.Transaction) (int64, error)

		// DeleteTransaction removes an owner's record; ErrNotFound when the
		// id does not exist or belongs to someone else.
		DeleteTransaction(ctx context.Context, owner string, id int64) error

		// ListTransactions returns the owner's records of one kind, latest
		// date first.
		ListTransactions(ctx context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error)

		// GetTransaction returns a single owner-scoped record by id.
		GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error)

		// SumExpensesByCategory aggregates expense amounts per category over
		// the inclusive [from, to] window. Income never counts.
		SumExpensesByCategory(ctx context.Context, owner string, from, to core.Date) (map[string]core.Money, error)
	}

	// Store is the combined backend surface the factory wires up.
	Store interface {
		PlanRepository
		TransactionStore
	}
)
