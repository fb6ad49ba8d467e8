package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Inputs are the rows one dashboard is computed from. Transactions must cover
// every month of the window; rows outside it are ignored.
type Inputs struct {
	Transactions []core.Transaction
	Accounts     []core.BankAccount
	Assets       []core.Asset
}

// Dashboard bundles every figure of the overview screen.
type Dashboard struct {
	Month     core.Month      `json:"month"`
	Totals    Totals          `json:"totals"`
	Net       decimal.Decimal `json:"net"`
	Snapshot  Snapshot        `json:"snapshot"`
	Series    []SeriesPoint   `json:"series"`
	Breakdown []Slice         `json:"breakdown"`
}

// BuildDashboard runs all four computations over the same inputs.
func BuildDashboard(in Inputs, now time.Time, window int, opts Options) (Dashboard, error) {
	opts = opts.withDefaults()

	totals, err := MonthlyTotals(in.Transactions, now, opts)
	if err != nil {
		return Dashboard{}, err
	}
	snapshot, err := PointInTimeTotals(in.Accounts, in.Assets)
	if err != nil {
		return Dashboard{}, err
	}
	series, err := TrailingSeries(in.Transactions, window, now, opts)
	if err != nil {
		return Dashboard{}, err
	}
	breakdown, err := CategoryBreakdown(in.Transactions, now, opts)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		Month:     core.MonthOf(now, opts.Location),
		Totals:    totals,
		Net:       totals.Net(),
		Snapshot:  snapshot,
		Series:    series,
		Breakdown: breakdown,
	}, nil
}
