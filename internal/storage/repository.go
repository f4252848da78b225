package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"budgetly/internal/budget"
	"budgetly/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository implements budget.Store on an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ budget.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// UpsertPlan replaces the owner's plan and its category rows in one
// transaction. Concurrent saves race with last-write-wins semantics.
func (r *SQLiteRepository) UpsertPlan(ctx context.Context, p core.Plan) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan upsert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (owner, initial_amount_cents, start_date, end_date, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(owner) DO UPDATE SET
			initial_amount_cents = excluded.initial_amount_cents,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			updated_at = CURRENT_TIMESTAMP`,
		p.Owner, p.InitialAmount.Cents, p.StartDate.String(), p.EndDate.String())
	if err != nil {
		return fmt.Errorf("upsert plan: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_categories WHERE owner = ?`, p.Owner); err != nil {
		return fmt.Errorf("clear plan categories: %w", err)
	}
	for i, cl := range p.Categories {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO plan_categories (owner, position, category, limit_cents)
			VALUES (?, ?, ?, ?)`,
			p.Owner, i, cl.Name, cl.Limit.Cents)
		if err != nil {
			return fmt.Errorf("insert plan category %q: %w", cl.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plan upsert: %w", err)
	}

	slog.InfoContext(ctx, "Plan saved",
		"owner", p.Owner,
		"plan_start", p.StartDate.String(),
		"plan_end", p.EndDate.String(),
		"categories", len(p.Categories))
	return nil
}

// FindActivePlan returns the owner's plan when asOf falls inside its window.
func (r *SQLiteRepository) FindActivePlan(ctx context.Context, owner string, asOf core.Date) (core.Plan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT owner, initial_amount_cents, start_date, end_date
		FROM plans
		WHERE owner = ? AND start_date <= ? AND end_date >= ?`,
		owner, asOf.String(), asOf.String())

	var (
		p          core.Plan
		cents      int64
		start, end string
	)
	if err := row.Scan(&p.Owner, &cents, &start, &end); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Plan{}, budget.ErrNoActivePlan
		}
		return core.Plan{}, fmt.Errorf("find active plan: %w", err)
	}

	p.InitialAmount = core.Money{Cents: cents}
	var err error
	if p.StartDate, err = core.ParseDate(start); err != nil {
		return core.Plan{}, fmt.Errorf("parse plan start date: %w", err)
	}
	if p.EndDate, err = core.ParseDate(end); err != nil {
		return core.Plan{}, fmt.Errorf("parse plan end date: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT category, limit_cents
		FROM plan_categories
		WHERE owner = ?
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

func (r *SQLiteRepository) AddTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (owner, kind, date, category, amount_cents, title, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Owner, string(t.Kind), t.Date.String(), t.Category, t.Amount.Cents, t.Title, t.Message)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", id,
		"owner", t.Owner,
		"kind", string(t.Kind),
		"category", t.Category,
		"amount_cents", t.Amount.Cents)
	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, owner string, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction result: %w", err)
	}
	if affected == 0 {
		return budget.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, owner string, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, owner, kind, date, category, amount_cents, title, message
		FROM transactions
		WHERE id = ? AND owner = ?`, id, owner)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, budget.ErrNotFound
		}
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, owner string, kind core.TransactionKind) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, owner, kind, date, category, amount_cents, title, message
		FROM transactions
		WHERE owner = ? AND kind = ?
		ORDER BY date DESC, id DESC`, owner, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// SumExpensesByCategory aggregates expense cents per category over the
// inclusive window. Income rows never appear in the result.
func (r *SQLiteRepository) SumExpensesByCategory(ctx context.Context, owner string, from, to core.Date) (map[string]core.Money, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount_cents)
		FROM transactions
		WHERE owner = ? AND kind = 'expense' AND date >= ? AND date <= ?
		GROUP BY category`, owner, from.String(), to.String())
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t    core.Transaction
		kind string
		date string
	)
	if err := row.Scan(&t.ID, &t.Owner, &kind, &date, &t.Category, &t.Amount.Cents, &t.Title, &t.Message); err != nil {
		return core.Transaction{}, err
	}
	t.Kind = core.TransactionKind(kind)
	var err error
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	return t, nil
}
