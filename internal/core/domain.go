package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense TransactionKind = "expense"
	Income  TransactionKind = "income"
)

// Categories is the closed set of budget buckets a plan may set limits for.
// Order matters: progress and notifications follow the plan's declared order,
// which clients build from this list.
var Categories = []string{
	"Groceries",
	"Bills, rent, insurance",
	"Entertainment & Lifestyle",
	"Unexpected",
	"Medical",
}

type (
	TransactionKind string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// CategoryLimit is one (category, limit) pair of a plan. Limit may be zero:
	// such a category still appears in progress but never triggers alerts.
	CategoryLimit struct {
		Name  string
		Limit Money
	}

	// Plan is a time-boxed budget declaration for one owner. At most one plan
	// exists per owner; saving a new one replaces the previous entirely.
	Plan struct {
		Owner         string
		InitialAmount Money
		StartDate     Date
		EndDate       Date
		Categories    []CategoryLimit
	}

	// Transaction is a single expense or income record. Records are created and
	// deleted, never mutated in place.
	Transaction struct {
		ID       int64
		Owner    string
		Kind     TransactionKind
		Date     Date
		Category string
		Amount   Money
		Title    string
		Message  string
	}
)

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrMissingInitialAmount = errors.New("missing initial amount")
	ErrMissingStartDate     = errors.New("missing start date")
	ErrMissingEndDate       = errors.New("missing end date")
	ErrEmptyCategoryList    = errors.New("empty category list")
	ErrUnknownCategory      = errors.New("unknown category")
	ErrNegativeLimit        = errors.New("negative category limit")
	ErrDateOrder            = errors.New("start date must not be after end date")
	ErrEmptyTitle           = errors.New("empty title")
	ErrEmptyCategory        = errors.New("empty category")
	ErrInvalidKind          = errors.New("invalid transaction kind")
)

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to day granularity.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsKnownCategory reports whether name is one of the fixed budget buckets.
func IsKnownCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

func (k TransactionKind) Valid() bool {
	return k == Expense || k == Income
}

// Validate checks the fields required to persist a plan. Failures carry the
// specific missing-field reason so the API can surface it.
func (p Plan) Validate() error {
	if p.InitialAmount.Cents == 0 {
		return ErrMissingInitialAmount
	}
	if p.InitialAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	if p.EndDate.IsZero() {
		return ErrMissingEndDate
	}
	if p.StartDate.After(p.EndDate.Time) {
		return ErrDateOrder
	}
	if len(p.Categories) == 0 {
		return ErrEmptyCategoryList
	}
	for _, cl := range p.Categories {
		if !IsKnownCategory(cl.Name) {
			return ErrUnknownCategory
		}
		if cl.Limit.Cents < 0 {
			return ErrNegativeLimit
		}
	}
	return nil
}

// ActiveAt reports whether the plan window contains t (both ends inclusive).
func (p Plan) ActiveAt(t Date) bool {
	return !t.Before(p.StartDate.Time) && !t.After(p.EndDate.Time)
}

// CategoryNames returns the plan's categories in declared order.
func (p Plan) CategoryNames() []string {
	names := make([]string, len(p.Categories))
	for i, cl := range p.Categories {
		names[i] = cl.Name
	}
	return names
}

func (t Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}
