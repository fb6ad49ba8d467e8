package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"
)

// ErrValidation marks input rejected before it reaches the store.
var ErrValidation = errors.New("invalid input")

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// ChangePublisher announces ledger changes to background workers.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// Invalidator drops cached reports of an owner.
type Invalidator interface {
	Invalidate(ctx context.Context, ownerID string) int
}

// LedgerService orchestrates ledger writes: validate, store, invalidate the
// owner's cached dashboards and publish a change message. Publishing is
// best-effort; the write has already succeeded.
type LedgerService struct {
	store       ledger.Store
	invalidator Invalidator
	publisher   ChangePublisher
	logger      *slog.Logger
}

// NewLedgerService wires the service. invalidator and publisher may be nil.
func NewLedgerService(store ledger.Store, invalidator Invalidator, publisher ChangePublisher, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{store: store, invalidator: invalidator, publisher: publisher, logger: logger}
}

func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string, f ledger.Filter) ([]core.Transaction, error) {
	if f.Kind != "" && !f.Kind.Valid() {
		return nil, invalid(fmt.Errorf("%w %q", core.ErrUnknownKind, f.Kind))
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From.Time) {
		return nil, invalid(errors.New("to is before from"))
	}
	return s.store.ListTransactions(ctx, ownerID, f)
}

func (s *LedgerService) ListCategories(ctx context.Context, ownerID string, kind core.Kind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, invalid(fmt.Errorf("%w %q", core.ErrUnknownKind, kind))
	}
	return s.store.ListCategories(ctx, ownerID, kind)
}

func (s *LedgerService) ListAccounts(ctx context.Context, ownerID string) ([]core.BankAccount, error) {
	return s.store.ListAccounts(ctx, ownerID)
}

func (s *LedgerService) ListAssets(ctx context.Context, ownerID string) ([]core.Asset, error) {
	return s.store.ListAssets(ctx, ownerID)
}

// CreateCategory stores a category for ownerID.
func (s *LedgerService) CreateCategory(ctx context.Context, ownerID string, c core.Category) (core.Category, error) {
	c.OwnerID = ownerID
	c.ID = ""
	if err := c.Validate(); err != nil {
		return core.Category{}, invalid(err)
	}
	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		metrics.IncLedgerWrite(amqp.EntityCategory, metrics.ResultError)
		return core.Category{}, fmt.Errorf("save category: %w", err)
	}
	s.changed(ctx, amqp.NewLedgerChangedMessage(ownerID, amqp.EntityCategory, amqp.ActionCreated, created.ID))
	return created, nil
}

// CreateTransaction stores a transaction for ownerID. A referenced category
// must belong to the owner and have the transaction's kind.
func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID string, t core.Transaction) (core.Transaction, error) {
	t.OwnerID = ownerID
	t.ID = ""
	if err := t.ValidateNew(); err != nil {
		return core.Transaction{}, invalid(err)
	}
	if t.Category != nil {
		if t.Category.ID == "" {
			t.Category = nil
		} else {
			c, err := s.store.GetCategory(ctx, ownerID, t.Category.ID)
			if err != nil {
				return core.Transaction{}, invalid(err)
			}
			if c.Kind != t.Kind {
				return core.Transaction{}, invalid(core.ErrKindMismatch)
			}
		}
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		metrics.IncLedgerWrite(amqp.EntityTransaction, metrics.ResultError)
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	msg := amqp.NewLedgerChangedMessage(ownerID, amqp.EntityTransaction, amqp.ActionCreated, created.ID).
		WithMonth(core.MonthOf(created.Date.Time, time.UTC))
	s.changed(ctx, msg)
	return created, nil
}

// DeleteTransaction removes one of the owner's transactions.
func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			metrics.IncLedgerWrite(amqp.EntityTransaction, metrics.ResultError)
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.changed(ctx, amqp.NewLedgerChangedMessage(ownerID, amqp.EntityTransaction, amqp.ActionDeleted, id))
	return nil
}

// CreateAccount stores a bank account. Negative balances are allowed.
func (s *LedgerService) CreateAccount(ctx context.Context, ownerID string, a core.BankAccount) (core.BankAccount, error) {
	a.OwnerID = ownerID
	a.ID = ""
	if err := a.ValidateNew(); err != nil {
		return core.BankAccount{}, invalid(err)
	}
	created, err := s.store.CreateAccount(ctx, a)
	if err != nil {
		metrics.IncLedgerWrite(amqp.EntityAccount, metrics.ResultError)
		return core.BankAccount{}, fmt.Errorf("save account: %w", err)
	}
	s.changed(ctx, amqp.NewLedgerChangedMessage(ownerID, amqp.EntityAccount, amqp.ActionCreated, created.ID))
	return created, nil
}

// CreateAsset stores an asset. Values must not be negative.
func (s *LedgerService) CreateAsset(ctx context.Context, ownerID string, a core.Asset) (core.Asset, error) {
	a.OwnerID = ownerID
	a.ID = ""
	if err := a.ValidateNew(); err != nil {
		return core.Asset{}, invalid(err)
	}
	created, err := s.store.CreateAsset(ctx, a)
	if err != nil {
		metrics.IncLedgerWrite(amqp.EntityAsset, metrics.ResultError)
		return core.Asset{}, fmt.Errorf("save asset: %w", err)
	}
	s.changed(ctx, amqp.NewLedgerChangedMessage(ownerID, amqp.EntityAsset, amqp.ActionCreated, created.ID))
	return created, nil
}

func (s *LedgerService) changed(ctx context.Context, msg *amqp.LedgerChangedMessage) {
	metrics.IncLedgerWrite(msg.Entity, metrics.ResultSuccess)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, msg.OwnerID)
	}

	if s.publisher == nil {
		s.logger.DebugContext(ctx, "AMQP publisher not configured, skipping ledger changed message")
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		metrics.IncPublish(metrics.ResultError)
		s.logger.ErrorContext(ctx, "Failed to publish ledger changed message",
			"owner", msg.OwnerID, "entity", msg.Entity, "id", msg.ID, "error", err)
		return
	}
	metrics.IncPublish(metrics.ResultSuccess)
}
