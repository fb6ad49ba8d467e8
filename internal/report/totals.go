package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Totals are income and expense sums for one calendar month.
type Totals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Net is income minus expense. It is derived, never stored.
func (t Totals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

func (t *Totals) add(tx core.Transaction) {
	switch tx.Kind {
	case core.KindIncome:
		t.Income = t.Income.Add(tx.Amount.Decimal)
	case core.KindExpense:
		t.Expense = t.Expense.Add(tx.Amount.Decimal)
	}
}

// Snapshot holds the point-in-time totals, which are not scoped to a month.
type Snapshot struct {
	BankBalance decimal.Decimal `json:"bank_balance"`
	AssetValue  decimal.Decimal `json:"asset_value"`
}

// MonthlyTotals sums the transactions dated inside the calendar month of now.
// Every row is validated, including rows outside the month, and the first
// violation is returned as a data-integrity error.
func MonthlyTotals(txs []core.Transaction, now time.Time, opts Options) (Totals, error) {
	opts = opts.withDefaults()
	return totalsFor(txs, core.MonthOf(now, opts.Location))
}

func totalsFor(txs []core.Transaction, month core.Month) (Totals, error) {
	totals := Totals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return Totals{}, err
		}
		if month.Contains(tx.Date) {
			totals.add(tx)
		}
	}
	return totals, nil
}

// BankBalanceTotal sums current balances. Negative balances reduce the total.
func BankBalanceTotal(accounts []core.BankAccount) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range accounts {
		if err := a.Validate(); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(a.Balance.Decimal)
	}
	return total, nil
}

// AssetValueTotal sums current asset values.
func AssetValueTotal(assets []core.Asset) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, a := range assets {
		if err := a.Validate(); err != nil {
			return decimal.Zero, err
		}
		total = total.Add(a.CurrentValue.Decimal)
	}
	return total, nil
}

// PointInTimeTotals computes both snapshot totals.
func PointInTimeTotals(accounts []core.BankAccount, assets []core.Asset) (Snapshot, error) {
	bank, err := BankBalanceTotal(accounts)
	if err != nil {
		return Snapshot{}, err
	}
	value, err := AssetValueTotal(assets)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{BankBalance: bank, AssetValue: value}, nil
}
