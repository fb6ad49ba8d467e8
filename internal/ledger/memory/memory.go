// Package memory is an in-process ledger.Store for tests and the memory
// backend. Data lives only as long as the process.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

type Store struct {
	mu           sync.Mutex
	defaults     []ledger.DefaultCategory
	seeded       map[string]bool
	categories   []core.Category
	transactions []core.Transaction
	accounts     []core.BankAccount
	assets       []core.Asset
}

var _ ledger.Store = (*Store)(nil)

// New returns an empty store. Every owner gets the given default categories
// the first time the store sees them.
func New(defaults []ledger.DefaultCategory) *Store {
	return &Store{defaults: defaults, seeded: map[string]bool{}}
}

// seedLocked must be called with mu held.
func (s *Store) seedLocked(ownerID string) {
	if s.seeded[ownerID] {
		return
	}
	s.seeded[ownerID] = true
	for _, d := range s.defaults {
		s.categories = append(s.categories, core.Category{
			ID:      uuid.NewString(),
			OwnerID: ownerID,
			Kind:    d.Kind,
			Name:    d.Name,
			Color:   d.Color,
		})
	}
}

func (s *Store) ListTransactions(_ context.Context, ownerID string, f ledger.Filter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && f.Match(t) {
			out = append(out, t)
		}
	}
	// s.transactions is in creation order; the stable sort keeps it within a day.
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return a.Date.Compare(b.Date.Time)
	})
	return out, nil
}

func (s *Store) ListCategories(_ context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked(ownerID)
	var out []core.Category
	for _, c := range s.categories {
		if c.OwnerID == ownerID && (kind == "" || c.Kind == kind) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, ownerID, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked(ownerID)
	return s.categoryLocked(ownerID, id)
}

func (s *Store) categoryLocked(ownerID, id string) (core.Category, error) {
	for _, c := range s.categories {
		if c.OwnerID == ownerID && c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, fmt.Errorf("category %q: %w", id, ledger.ErrNotFound)
}

func (s *Store) ListAccounts(_ context.Context, ownerID string) ([]core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.BankAccount
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) ListAssets(_ context.Context, ownerID string) ([]core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Asset
	for _, a := range s.assets {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked(c.OwnerID)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories = append(s.categories, c)
	return c, nil
}

// CreateTransaction resolves the category reference against the owner's
// categories, the way the SQL store joins it.
func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seedLocked(t.OwnerID)
	if t.Category != nil {
		c, err := s.categoryLocked(t.OwnerID, t.Category.ID)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Category = &core.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.transactions = append(s.transactions, t)
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.transactions {
		if t.OwnerID == ownerID && t.ID == id {
			s.transactions = slices.Delete(s.transactions, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("transaction %q: %w", id, ledger.ErrNotFound)
}

func (s *Store) CreateAccount(_ context.Context, a core.BankAccount) (core.BankAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts = append(s.accounts, a)
	return a, nil
}

func (s *Store) CreateAsset(_ context.Context, a core.Asset) (core.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.assets = append(s.assets, a)
	return a, nil
}

// Insert stores transactions as-is, skipping category resolution. Tests use
// it to reproduce rows that a real store might hand back.
func (s *Store) Insert(txs ...core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txs...)
}
