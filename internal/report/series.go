package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// SeriesPoint is one month of the trailing income/expense series.
type SeriesPoint struct {
	Month   core.Month      `json:"month"`
	Label   string          `json:"label"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// Window returns the n months ending with the month of now, oldest first.
func Window(n int, now time.Time, loc *time.Location) ([]core.Month, error) {
	if n < 1 {
		return nil, ErrInvalidWindow
	}
	last := core.MonthOf(now, loc)
	months := make([]core.Month, n)
	for i := range months {
		months[i] = last.AddMonths(i - (n - 1))
	}
	return months, nil
}

// TrailingSeries buckets transactions into the n calendar months ending with
// the month of now. It always returns exactly n points in ascending order;
// months without rows carry zero totals. Rows outside the window are ignored
// after validation.
func TrailingSeries(txs []core.Transaction, n int, now time.Time, opts Options) ([]SeriesPoint, error) {
	opts = opts.withDefaults()
	months, err := Window(n, now, opts.Location)
	if err != nil {
		return nil, err
	}

	points := make([]SeriesPoint, n)
	for i, m := range months {
		points[i] = SeriesPoint{
			Month:   m,
			Label:   opts.Labels.Label(m),
			Income:  decimal.Zero,
			Expense: decimal.Zero,
		}
	}

	first := months[0]
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		i := monthsBetween(first, core.MonthOf(tx.Date.Time, time.UTC))
		if i < 0 || i >= n {
			continue
		}
		switch tx.Kind {
		case core.KindIncome:
			points[i].Income = points[i].Income.Add(tx.Amount.Decimal)
		case core.KindExpense:
			points[i].Expense = points[i].Expense.Add(tx.Amount.Decimal)
		}
	}
	return points, nil
}

func monthsBetween(from, to core.Month) int {
	return (to.Year-from.Year)*12 + int(to.Month) - int(from.Month)
}
