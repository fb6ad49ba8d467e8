// Package ledger declares the ports through which owner-scoped ledger rows
// are read and written.
package ledger

import (
	"context"
	"errors"

	"fintrack/internal/core"
)

// ErrNotFound is returned when a row does not exist for the given owner.
var ErrNotFound = errors.New("not found")

// Filter narrows a transaction listing. Zero fields do not filter.
type Filter struct {
	From core.Date // inclusive
	To   core.Date // inclusive
	Kind core.Kind
}

// MonthFilter covers every day of m.
func MonthFilter(m core.Month) Filter {
	return Filter{From: m.Start(), To: m.End()}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t core.Transaction) bool {
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To.Time) {
		return false
	}
	return true
}

// Ports for outbound adapters.
type (
	// TransactionReader lists transactions with the category name and color
	// joined on, ordered by date then creation order.
	TransactionReader interface {
		ListTransactions(ctx context.Context, ownerID string, f Filter) ([]core.Transaction, error)
	}

	CategoryReader interface {
		// ListCategories returns the owner's categories, optionally of one kind.
		ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error)
		GetCategory(ctx context.Context, ownerID, id string) (core.Category, error)
	}

	AccountReader interface {
		ListAccounts(ctx context.Context, ownerID string) ([]core.BankAccount, error)
	}

	AssetReader interface {
		ListAssets(ctx context.Context, ownerID string) ([]core.Asset, error)
	}

	// Writer creates rows. Stores assign an id when the input has none.
	Writer interface {
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, ownerID, id string) error
		CreateAccount(ctx context.Context, a core.BankAccount) (core.BankAccount, error)
		CreateAsset(ctx context.Context, a core.Asset) (core.Asset, error)
	}

	// Reader is everything the dashboard needs.
	Reader interface {
		TransactionReader
		CategoryReader
		AccountReader
		AssetReader
	}

	Store interface {
		Reader
		Writer
	}
)

// DefaultCategory is a category every new owner starts with.
type DefaultCategory struct {
	Kind  core.Kind
	Name  string
	Color string
}

// DefaultCategories are seeded for new owners by the seed command and the
// memory store.
var DefaultCategories = []DefaultCategory{
	{core.KindExpense, "Housing", "#e74c3c"},
	{core.KindExpense, "Food", "#e67e22"},
	{core.KindExpense, "Transport", "#f39c12"},
	{core.KindExpense, "Health", "#3498db"},
	{core.KindExpense, "Leisure", "#9b59b6"},
	{core.KindIncome, "Salary", "#27ae60"},
	{core.KindIncome, "Investments", "#16a085"},
	{core.KindIncome, "Other income", "#667eea"},
}
