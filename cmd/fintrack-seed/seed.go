package main

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/services"
)

type seedStats struct {
	categories   int
	transactions int
	accounts     int
	assets       int
}

// demoExpense is one recurring expense; amounts grow by step each month.
type demoExpense struct {
	category string
	day      int
	base     string
	step     string
	note     string
}

var demoExpenses = []demoExpense{
	{"Housing", 3, "950", "0", "Rent"},
	{"Food", 10, "310.40", "12.35", "Groceries"},
	{"Transport", 15, "78", "4.5", "Transit pass"},
	{"Leisure", 22, "60", "15", "Concert"},
	{"", 25, "42.90", "1.10", "Cash withdrawal"},
}

// seedOwner is idempotent: categories are created only when the owner has
// none and rows only when the owner has no transactions yet.
func seedOwner(ctx context.Context, svc *services.LedgerService, owner string, now time.Time, months int) (seedStats, error) {
	var stats seedStats

	cats, err := svc.ListCategories(ctx, owner, "")
	if err != nil {
		return stats, fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		for _, d := range ledger.DefaultCategories {
			c, err := svc.CreateCategory(ctx, owner, core.Category{Kind: d.Kind, Name: d.Name, Color: d.Color})
			if err != nil {
				return stats, fmt.Errorf("create category %s: %w", d.Name, err)
			}
			cats = append(cats, c)
			stats.categories++
		}
	}
	byName := make(map[string]string, len(cats))
	for _, c := range cats {
		byName[c.Name] = c.ID
	}

	existing, err := svc.ListTransactions(ctx, owner, ledger.Filter{})
	if err != nil {
		return stats, fmt.Errorf("list transactions: %w", err)
	}
	if len(existing) > 0 {
		return stats, nil
	}

	current := core.MonthOf(now, time.UTC)
	for i := months - 1; i >= 0; i-- {
		m := current.AddMonths(-i)
		age := decimal.NewFromInt(int64(months - 1 - i))

		salary := core.Transaction{
			Kind:        core.KindIncome,
			Amount:      core.MustMoney("3200"),
			Date:        core.NewDate(m.Year, int(m.Month), 1),
			Description: "Salary",
			Category:    ref(byName, "Salary"),
		}
		if _, err := svc.CreateTransaction(ctx, owner, salary); err != nil {
			return stats, fmt.Errorf("create salary for %s: %w", m, err)
		}
		stats.transactions++

		for _, e := range demoExpenses {
			amount := decimal.RequireFromString(e.base).Add(decimal.RequireFromString(e.step).Mul(age))
			tx := core.Transaction{
				Kind:        core.KindExpense,
				Amount:      core.NewMoney(amount),
				Date:        core.NewDate(m.Year, int(m.Month), e.day),
				Description: e.note,
				Category:    ref(byName, e.category),
			}
			if _, err := svc.CreateTransaction(ctx, owner, tx); err != nil {
				return stats, fmt.Errorf("create %s for %s: %w", e.note, m, err)
			}
			stats.transactions++
		}
	}

	for _, a := range []core.BankAccount{
		{Name: "Checking", Balance: core.MustMoney("2450.75")},
		{Name: "Savings", Balance: core.MustMoney("8000")},
		{Name: "Credit card", Balance: core.MustMoney("-312.40")},
	} {
		if _, err := svc.CreateAccount(ctx, owner, a); err != nil {
			return stats, fmt.Errorf("create account %s: %w", a.Name, err)
		}
		stats.accounts++
	}

	acquired := current.AddMonths(-24).Start()
	for _, a := range []core.Asset{
		{Name: "Index fund", CurrentValue: core.MustMoney("12650"), InitialValue: core.MustMoney("10000"), AcquiredOn: acquired},
		{Name: "Car", CurrentValue: core.MustMoney("9000"), InitialValue: core.MustMoney("15000"), AcquiredOn: acquired},
	} {
		if _, err := svc.CreateAsset(ctx, owner, a); err != nil {
			return stats, fmt.Errorf("create asset %s: %w", a.Name, err)
		}
		stats.assets++
	}
	return stats, nil
}

func ref(byName map[string]string, name string) *core.CategoryRef {
	id, ok := byName[name]
	if name == "" || !ok {
		return nil
	}
	return &core.CategoryRef{ID: id, Name: name}
}
