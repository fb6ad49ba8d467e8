package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/ledger/memory"
	"fintrack/internal/report"
)

var may15 = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []*amqp.LedgerChangedMessage
	err  error
}

func (p *fakePublisher) PublishLedgerChanged(_ context.Context, msg *amqp.LedgerChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

// countingReader wraps a reader and counts transaction queries.
type countingReader struct {
	ledger.Reader
	mu      sync.Mutex
	queries int
}

func (r *countingReader) ListTransactions(ctx context.Context, ownerID string, f ledger.Filter) ([]core.Transaction, error) {
	r.mu.Lock()
	r.queries++
	r.mu.Unlock()
	return r.Reader.ListTransactions(ctx, ownerID, f)
}

// leakyReader hands back rows of another owner.
type leakyReader struct {
	ledger.Reader
}

func (leakyReader) ListAccounts(context.Context, string) ([]core.BankAccount, error) {
	return []core.BankAccount{{ID: "acc-x", OwnerID: "mallory", Balance: core.MustMoney("1")}}, nil
}

func seedScenario(t *testing.T, s *memory.Store) {
	t.Helper()
	s.Insert(
		core.Transaction{ID: "t1", OwnerID: "alice", Kind: core.KindIncome, Amount: core.MustMoney("1000"), Date: core.NewDate(2024, 5, 10)},
		core.Transaction{ID: "t2", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("400"), Date: core.NewDate(2024, 5, 12)},
		core.Transaction{ID: "t3", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("200"), Date: core.NewDate(2024, 4, 1)},
		core.Transaction{ID: "t4", OwnerID: "bob", Kind: core.KindIncome, Amount: core.MustMoney("7"), Date: core.NewDate(2024, 5, 1)},
	)
}

func TestDashboardService_Build(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	seedScenario(t, store)
	reader := &countingReader{Reader: store}
	svc := NewDashboardService(reader, cache.NewLRUCache[report.Dashboard](10, time.Minute), report.Options{}, 3, nil)

	d, err := svc.Build(ctx, "alice", may15, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if d.Totals.Income.String() != "1000" || d.Totals.Expense.String() != "400" || d.Net.String() != "600" {
		t.Errorf("unexpected totals: %+v net=%s", d.Totals, d.Net)
	}
	if len(d.Series) != 3 || d.Series[1].Expense.String() != "200" {
		t.Errorf("unexpected series: %+v", d.Series)
	}
	if reader.queries != 3 {
		t.Errorf("expected one query per month, got %d", reader.queries)
	}

	// Second build is served from the cache.
	if _, err := svc.Build(ctx, "alice", may15, 3); err != nil {
		t.Fatal(err)
	}
	if reader.queries != 3 {
		t.Errorf("expected cache hit, got %d queries", reader.queries)
	}

	if n := svc.Invalidate(ctx, "alice"); n != 1 {
		t.Errorf("Invalidate removed %d entries, want 1", n)
	}
	if _, err := svc.Build(ctx, "alice", may15, 3); err != nil {
		t.Fatal(err)
	}
	if reader.queries != 6 {
		t.Errorf("expected recompute after invalidation, got %d queries", reader.queries)
	}
}

func TestDashboardService_Operations(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	seedScenario(t, store)
	svc := NewDashboardService(store, nil, report.Options{}, 0, nil)

	if svc.Window() != report.DefaultWindow {
		t.Errorf("default window = %d", svc.Window())
	}

	totals, err := svc.MonthlyTotals(ctx, "alice", may15)
	if err != nil || totals.Net().String() != "600" {
		t.Fatalf("MonthlyTotals = %+v, %v", totals, err)
	}

	series, err := svc.Series(ctx, "alice", may15, 3)
	if err != nil || len(series) != 3 || series[2].Income.String() != "1000" {
		t.Fatalf("Series = %+v, %v", series, err)
	}

	slices, err := svc.Breakdown(ctx, "alice", may15)
	if err != nil || len(slices) != 1 || slices[0].Label != report.DefaultUncategorizedLabel {
		t.Fatalf("Breakdown = %+v, %v", slices, err)
	}

	snap, err := svc.Snapshot(ctx, "carol")
	if err != nil || !snap.BankBalance.IsZero() || !snap.AssetValue.IsZero() {
		t.Fatalf("Snapshot = %+v, %v", snap, err)
	}
}

func TestDashboardService_ForeignOwner(t *testing.T) {
	ctx := context.Background()
	svc := NewDashboardService(leakyReader{Reader: memory.New(nil)}, nil, report.Options{}, 2, nil)

	_, err := svc.Build(ctx, "alice", may15, 0)
	if !errors.Is(err, core.ErrForeignOwner) || !errors.Is(err, core.ErrDataIntegrity) {
		t.Fatalf("expected foreign owner integrity error, got %v", err)
	}
	_, err = svc.Snapshot(ctx, "alice")
	if !errors.Is(err, core.ErrForeignOwner) {
		t.Fatalf("expected foreign owner error from Snapshot, got %v", err)
	}
}

func TestDashboardService_IntegrityError(t *testing.T) {
	store := memory.New(nil)
	store.Insert(core.Transaction{ID: "bad", OwnerID: "alice", Kind: "refund", Amount: core.MustMoney("1"), Date: core.NewDate(2024, 5, 1)})
	svc := NewDashboardService(store, nil, report.Options{}, 1, nil)

	if _, err := svc.Build(context.Background(), "alice", may15, 0); !errors.Is(err, core.ErrDataIntegrity) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestLedgerService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.New(ledger.DefaultCategories)
	pub := &fakePublisher{}
	dash := NewDashboardService(store, cache.NewLRUCache[report.Dashboard](10, time.Minute), report.Options{}, 1, nil)
	svc := NewLedgerService(store, dash, pub, nil)

	cats, err := svc.ListCategories(ctx, "alice", core.KindExpense)
	if err != nil || len(cats) == 0 {
		t.Fatalf("expected seeded categories: %v", err)
	}

	before, err := dash.Build(ctx, "alice", may15, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !before.Totals.Expense.IsZero() {
		t.Fatalf("unexpected expense before write: %s", before.Totals.Expense)
	}

	created, err := svc.CreateTransaction(ctx, "alice", core.Transaction{
		OwnerID:  "mallory", // ignored, the caller's owner wins
		Kind:     core.KindExpense,
		Amount:   core.MustMoney("25.50"),
		Date:     core.NewDate(2024, 5, 3),
		Category: &core.CategoryRef{ID: cats[0].ID},
	})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if created.OwnerID != "alice" || created.Category.Name != cats[0].Name {
		t.Errorf("unexpected transaction: %+v", created)
	}

	after, err := dash.Build(ctx, "alice", may15, 1)
	if err != nil {
		t.Fatal(err)
	}
	if after.Totals.Expense.String() != "25.5" {
		t.Errorf("cached dashboard was not invalidated: %s", after.Totals.Expense)
	}

	if len(pub.msgs) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.msgs))
	}
	msg := pub.msgs[0]
	if msg.OwnerID != "alice" || msg.Entity != amqp.EntityTransaction || msg.Month == nil || msg.Month.String() != "2024-05" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestLedgerService_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.New(ledger.DefaultCategories)
	svc := NewLedgerService(store, nil, nil, nil)
	income, _ := store.ListCategories(ctx, "alice", core.KindIncome)

	tests := []struct {
		name string
		tx   core.Transaction
	}{
		{"unknown kind", core.Transaction{Kind: "gift", Amount: core.MustMoney("1"), Date: core.NewDate(2024, 1, 1)}},
		{"negative amount", core.Transaction{Kind: core.KindExpense, Amount: core.MustMoney("-1"), Date: core.NewDate(2024, 1, 1)}},
		{"missing amount", core.Transaction{Kind: core.KindExpense, Date: core.NewDate(2024, 1, 1)}},
		{"missing date", core.Transaction{Kind: core.KindExpense, Amount: core.MustMoney("1")}},
		{"kind mismatch", core.Transaction{Kind: core.KindExpense, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 1, 1), Category: &core.CategoryRef{ID: income[0].ID}}},
		{"unknown category", core.Transaction{Kind: core.KindExpense, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 1, 1), Category: &core.CategoryRef{ID: "nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateTransaction(ctx, "alice", tt.tx); !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}

	if _, err := svc.CreateCategory(ctx, "alice", core.Category{Kind: core.KindExpense, Name: "X", Color: "red"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad color must be rejected, got %v", err)
	}
	if _, err := svc.CreateAsset(ctx, "alice", core.Asset{Name: "Car", CurrentValue: core.MustMoney("-5")}); !errors.Is(err, ErrValidation) {
		t.Errorf("negative asset must be rejected, got %v", err)
	}
	if _, err := svc.CreateAccount(ctx, "alice", core.BankAccount{Name: "Overdraft", Balance: core.MustMoney("-5")}); err != nil {
		t.Errorf("negative balance must be accepted, got %v", err)
	}
	if _, err := svc.ListTransactions(ctx, "alice", ledger.Filter{Kind: "gift"}); !errors.Is(err, ErrValidation) {
		t.Errorf("bad kind filter must be rejected, got %v", err)
	}
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewLedgerService(store, nil, pub, nil)

	acc, err := svc.CreateAccount(ctx, "alice", core.BankAccount{Name: "Checking", Balance: core.MustMoney("10")})
	if err != nil {
		t.Fatalf("write must succeed when publishing fails: %v", err)
	}
	accounts, _ := store.ListAccounts(ctx, "alice")
	if len(accounts) != 1 || accounts[0].ID != acc.ID {
		t.Fatalf("account not stored: %+v", accounts)
	}
}

func TestLedgerService_DeleteTransaction(t *testing.T) {
	ctx := context.Background()
	store := memory.New(nil)
	seedScenario(t, store)
	pub := &fakePublisher{}
	svc := NewLedgerService(store, nil, pub, nil)

	if err := svc.DeleteTransaction(ctx, "alice", "t4"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("deleting bob's row as alice must be not found, got %v", err)
	}
	if err := svc.DeleteTransaction(ctx, "alice", "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Action != amqp.ActionDeleted {
		t.Fatalf("unexpected messages: %+v", pub.msgs)
	}
}
