package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/report"
	"fintrack/internal/services"
	sheetsmem "fintrack/internal/sheets/memory"
)

type failingPublisher struct{}

func (failingPublisher) PublishDashboard(context.Context, string, report.Dashboard) error {
	return errors.New("quota exceeded")
}

func newWorker(t *testing.T, store *memory.Store) (*ReportWorker, *sheetsmem.Publisher, cache.Cache[report.Dashboard]) {
	t.Helper()
	c := cache.NewLRUCache[report.Dashboard](10, time.Hour)
	dash := services.NewDashboardService(store, c, report.Options{}, 3, nil)
	pub := sheetsmem.New()
	w := NewReportWorker(dash, pub, nil)
	w.now = func() time.Time { return time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC) }
	return w, pub, c
}

func TestHandleLedgerChanged_RebuildsAffectedMonth(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	store.Insert(core.Transaction{ID: "t1", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("40"), Date: core.NewDate(2024, 5, 3)})
	w, pub, c := newWorker(t, store)

	msg := amqp.NewLedgerChangedMessage("alice", amqp.EntityTransaction, amqp.ActionCreated, "t1").
		WithMonth(core.Month{Year: 2024, Month: time.May})
	if err := w.HandleLedgerChanged(ctx, msg); err != nil {
		t.Fatalf("HandleLedgerChanged: %v", err)
	}

	d, ok := pub.Last("alice")
	if !ok || d.Month.String() != "2024-05" || d.Totals.Expense.String() != "40" {
		t.Fatalf("unexpected published dashboard: %+v", d)
	}
	key := services.CacheKey("alice", core.Month{Year: 2024, Month: time.May}, 3)
	if _, ok := c.Get(ctx, key); !ok {
		t.Fatalf("rebuilt dashboard not cached under %s", key)
	}
}

func TestHandleLedgerChanged_DefaultsToCurrentMonth(t *testing.T) {
	store := memory.New(nil)
	w, pub, _ := newWorker(t, store)

	msg := amqp.NewLedgerChangedMessage("bob", amqp.EntityAccount, amqp.ActionCreated, "acc")
	if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	d, _ := pub.Last("bob")
	if d.Month.String() != "2024-06" {
		t.Fatalf("expected current month, got %s", d.Month)
	}
}

func TestHandleLedgerChanged_IntegrityErrorIsAcknowledged(t *testing.T) {
	store := memory.New(nil)
	store.Insert(core.Transaction{ID: "bad", OwnerID: "alice", Kind: "refund", Amount: core.MustMoney("1"), Date: core.NewDate(2024, 6, 1)})
	w, pub, _ := newWorker(t, store)

	msg := amqp.NewLedgerChangedMessage("alice", amqp.EntityTransaction, amqp.ActionCreated, "bad")
	if err := w.HandleLedgerChanged(context.Background(), msg); err != nil {
		t.Fatalf("integrity errors must not requeue, got %v", err)
	}
	if pub.Count() != 0 {
		t.Fatal("nothing should be published")
	}
}

func TestHandleLedgerChanged_PublishErrorRequeues(t *testing.T) {
	store := memory.New(nil)
	dash := services.NewDashboardService(store, nil, report.Options{}, 1, nil)
	w := NewReportWorker(dash, failingPublisher{}, nil)

	msg := amqp.NewLedgerChangedMessage("alice", amqp.EntityAsset, amqp.ActionCreated, "a")
	if err := w.HandleLedgerChanged(context.Background(), msg); err == nil {
		t.Fatal("expected publish error")
	}
}
