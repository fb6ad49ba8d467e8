package memory

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func TestDefaultCategoriesSeededPerOwner(t *testing.T) {
	ctx := context.Background()
	s := New(ledger.DefaultCategories)

	cats, err := s.ListCategories(ctx, "alice", "")
	if err != nil || len(cats) != len(ledger.DefaultCategories) {
		t.Fatalf("unexpected categories: %v err=%v", cats, err)
	}
	income, _ := s.ListCategories(ctx, "alice", core.KindIncome)
	for _, c := range income {
		if c.Kind != core.KindIncome {
			t.Fatalf("kind filter leaked %v", c)
		}
	}
	// Seeding happens once.
	again, _ := s.ListCategories(ctx, "alice", "")
	if len(again) != len(cats) {
		t.Fatalf("seeded twice: %d", len(again))
	}
	bob, _ := s.ListCategories(ctx, "bob", "")
	if len(bob) != len(cats) || bob[0].ID == cats[0].ID {
		t.Fatalf("owners must get their own rows")
	}
}

func TestCreateTransactionJoinsCategory(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	cat, err := s.CreateCategory(ctx, core.Category{OwnerID: "alice", Kind: core.KindExpense, Name: "Food", Color: "#111111"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	got, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:  "alice",
		Kind:     core.KindExpense,
		Amount:   core.MustMoney("12.50"),
		Date:     core.NewDate(2024, 5, 3),
		Category: &core.CategoryRef{ID: cat.ID},
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if got.ID == "" || got.Category.Name != "Food" || got.Category.Color != "#111111" {
		t.Fatalf("unexpected transaction: %+v", got)
	}

	// Another owner cannot reference alice's category.
	_, err = s.CreateTransaction(ctx, core.Transaction{
		OwnerID:  "bob",
		Kind:     core.KindExpense,
		Amount:   core.MustMoney("1"),
		Date:     core.NewDate(2024, 5, 3),
		Category: &core.CategoryRef{ID: cat.ID},
	})
	if !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListTransactionsFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.Insert(
		core.Transaction{ID: "c", OwnerID: "alice", Kind: core.KindIncome, Amount: core.MustMoney("3"), Date: core.NewDate(2024, 5, 20)},
		core.Transaction{ID: "a", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 5, 1)},
		core.Transaction{ID: "x", OwnerID: "bob", Kind: core.KindExpense, Amount: core.MustMoney("9"), Date: core.NewDate(2024, 5, 2)},
		core.Transaction{ID: "b", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("2"), Date: core.NewDate(2024, 5, 1)},
		core.Transaction{ID: "old", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("2"), Date: core.NewDate(2024, 4, 30)},
	)

	tests := []struct {
		name   string
		filter ledger.Filter
		want   []string
	}{
		{"all", ledger.Filter{}, []string{"old", "a", "b", "c"}},
		{"month", ledger.MonthFilter(core.Month{Year: 2024, Month: 5}), []string{"a", "b", "c"}},
		{"kind", ledger.Filter{Kind: core.KindIncome}, []string{"c"}},
		{"to inclusive", ledger.Filter{To: core.NewDate(2024, 5, 1)}, []string{"old", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListTransactions(ctx, "alice", tt.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var ids []string
			for _, tx := range got {
				ids = append(ids, tx.ID)
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("got %v, want %v", ids, tt.want)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", ids, tt.want)
				}
			}
		})
	}
}

func TestDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	s.Insert(core.Transaction{ID: "t1", OwnerID: "alice", Kind: core.KindIncome, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 1, 1)})

	if err := s.DeleteTransaction(ctx, "bob", "t1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("foreign delete must be not found, got %v", err)
	}
	if err := s.DeleteTransaction(ctx, "alice", "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, "alice", "t1"); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("second delete must be not found, got %v", err)
	}
}

func TestAccountsAndAssetsAreOwnerScoped(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	if _, err := s.CreateAccount(ctx, core.BankAccount{OwnerID: "alice", Name: "Checking", Balance: core.MustMoney("-10")}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateAsset(ctx, core.Asset{OwnerID: "bob", Name: "Car", CurrentValue: core.MustMoney("5000")}); err != nil {
		t.Fatal(err)
	}
	accounts, _ := s.ListAccounts(ctx, "alice")
	assets, _ := s.ListAssets(ctx, "alice")
	if len(accounts) != 1 || len(assets) != 0 {
		t.Fatalf("unexpected rows: accounts=%v assets=%v", accounts, assets)
	}
}

func TestListTransactionsOrdersByDateThenCreation(t *testing.T) {
	ctx := context.Background()
	s := New(nil)
	day := core.NewDate(2024, 5, 2)
	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.CreateTransaction(ctx, core.Transaction{ID: id, OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("1"), Date: day}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.CreateTransaction(ctx, core.Transaction{ID: "z", OwnerID: "alice", Kind: core.KindExpense, Amount: core.MustMoney("1"), Date: core.NewDate(2024, 5, 1)}); err != nil {
		t.Fatal(err)
	}

	got, err := s.ListTransactions(ctx, "alice", ledger.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, tx := range got {
		ids = append(ids, tx.ID)
	}
	want := []string{"z", "c", "a", "b"}
	if len(ids) != len(want) {
		t.Fatalf("got %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("got %v, want %v", ids, want)
		}
	}
}
