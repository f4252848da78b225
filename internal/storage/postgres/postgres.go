// Package postgres implements budget.Store on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"budgetly/internal/budget"
	"budgetly/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

var _ budget.Store = (*Repository)(nil)

// New connects to the database and ensures the schema exists.
func New(ctx context.Context, connString string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &Repository{pool: pool}
	if err := r.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) Close() {
	r.pool.Close()
}

func (r *Repository) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			owner TEXT NOT NULL,
			kind TEXT NOT NULL CHECK (kind IN ('expense', 'income')),
			date DATE NOT NULL,
			category TEXT NOT NULL,
			amount_cents BIGINT NOT NULL CHECK (amount_cents > 0),
			title TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_owner_kind_date
			ON transactions (owner, kind, date)`,
		`CREATE TABLE IF NOT EXISTS plans (
			owner TEXT PRIMARY KEY,
			initial_amount_cents BIGINT NOT NULL,
			start_date DATE NOT NULL,
			end_date DATE NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS plan_categories (
			owner TEXT NOT NULL REFERENCES plans (owner) ON DELETE CASCADE,
			position INT NOT NULL,
			category TEXT NOT NULL,
			limit_cents BIGINT NOT NULL CHECK (limit_cents >= 0),
			PRIMARY KEY (owner, position)
		)`,
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

func (r *Repository) UpsertPlan(ctx context.Context, p core.Plan) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin plan upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO plans (owner, initial_amount_cents, start_date, end_date, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (owner) DO UPDATE SET
			initial_amount_cents = EXCLUDED.initial_amount_cents,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			updated_at = NOW()`,
		p.Owner, p.InitialAmount.Cents, p.StartDate.Time, p.EndDate.Time)
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM plan_categories WHERE owner = $1`, p.Owner); err != nil {
		return fmt.Errorf("clear plan categories: %w", err)
	}
	for i, cl := range p.Categories {
		_, err := tx.Exec(ctx, `
			INSERT INTO plan_categories (owner, position, category, limit_cents)
			VALUES ($1, $2, $3, $4)`,
			p.Owner, i, cl.Name, cl.Limit.Cents)
		if err != nil {
			return fmt.Errorf("insert plan category %q: %w", cl.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit plan upsert: %w", err)
	}
	return nil
}

func (r *Repository) FindActivePlan(ctx context.Context, owner string, asOf core.Date) (core.Plan, error) {
	var p core.Plan
	row := r.pool.QueryRow(ctx, `
		SELECT owner, initial_amount_cents, start_date, end_date
		FROM plans
		WHERE owner = $1 AND start_date <= $2 AND end_date >= $2`,
		owner, asOf.Time)

	if err := row.Scan(&p.Owner, &p.InitialAmount.Cents, &p.StartDate.Time, &p.EndDate.Time); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Plan{}, budget.ErrNoActivePlan
		}
		return core.Plan{}, fmt.Errorf("find active plan: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT category, limit_cents
		FROM plan_categories
		WHERE owner = $1
		ORDER BY position`, owner)
	if err != nil {
		return core.Plan{}, fmt.Errorf("load plan categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cl core.CategoryLimit
		if err := rows.Scan(&cl.Name, &cl.Limit.Cents); err != nil {
			return core.Plan{}, fmt.Errorf("scan plan category: %w", err)
		}
		p.Categories = append(p.Categories, cl)
	}
	if err := rows.Err(); err != nil {
		return core.Plan{}, fmt.Errorf("iterate plan categories: %w", err)
	}
	return p, nil
}

func (r *Repository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO transactions (owner, kind, date, category, amount_cents, title, message)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		t.Owner, string(t.Kind), t.Date.Time, t.Category, t.Amount.Cents, t.Title, t.Message).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	return id, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND owner = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return budget.ErrNotFound
	}
	return nil
}

func (r *Repository) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	var (
		t    core.Transaction
		kind string
	)
	row := r.pool.QueryRow(ctx, `
		SELECT id, owner, kind, date, category, amount_cents, title, message
		FROM transactions
		WHERE id = $1 AND owner = $2`, id, owner)
	if err := row.Scan(&t.ID, &t.Owner, &kind, &t.Date.Time, &t.Category, &t.Amount.Cents, &t.Title, &t.Message); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return core.Transaction{}, budget.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.Kind = core.TransactionKind(kind)
	return t, nil
}

func (r *Repository) ListTransactions(ctx context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, owner, kind, date, category, amount_cents, title, message
		FROM transactions
		WHERE owner = $1 AND kind = $2
		ORDER BY date DESC, id DESC`, owner, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t    core.Transaction
			kindCol string
		)
		if err := rows.Scan(&t.ID, &t.Owner, &kindCol, &t.Date.Time, &t.Category, &t.Amount.Cents, &t.Title, &t.Message); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Kind = core.TransactionKind(kindCol)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *Repository) SumExpensesByCategory(ctx context.Context, owner string, from, to core.Date) (map[string]core.Money, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, SUM(amount_cents)
		FROM transactions
		WHERE owner = $1 AND kind = 'expense' AND date BETWEEN $2 AND $3
		GROUP BY category`, owner, from.Time, to.Time)
	if err != nil {
		return nil, fmt.Errorf("sum expenses by category: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]core.Money)
	for rows.Next() {
		var (
			category string
			cents    int64
		)
		if err := rows.Scan(&category, &cents); err != nil {
			return nil, fmt.Errorf("scan category sum: %w", err)
		}
		sums[category] = core.Money{Cents: cents}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category sums: %w", err)
	}
	return sums, nil
}
