package report

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Slice is one category group of the monthly expense breakdown.
type Slice struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
	Color string          `json:"color"`
	// Share is Total over the breakdown total, rounded to four places.
	Share decimal.Decimal `json:"share"`
}

// CategoryBreakdown groups the expenses of now's month by category name.
//
// Groups keep the order in which they first appear in txs, so callers that
// pass rows sorted by date get a stable, date-driven order. A group takes the
// first explicit color seen for it; groups without one take the palette entry
// at their output position. Income rows are validated and skipped.
//
// Rows without a category are grouped under opts.UncategorizedLabel. A real
// category carrying that same name merges into that group.
func CategoryBreakdown(txs []core.Transaction, now time.Time, opts Options) ([]Slice, error) {
	opts = opts.withDefaults()
	month := core.MonthOf(now, opts.Location)

	slices := []Slice{}
	index := map[string]int{}
	sum := decimal.Zero
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, err
		}
		if tx.Kind != core.KindExpense || !month.Contains(tx.Date) {
			continue
		}

		label, color := opts.UncategorizedLabel, ""
		if tx.Category != nil && tx.Category.Name != "" {
			label, color = tx.Category.Name, tx.Category.Color
		}

		i, ok := index[label]
		if !ok {
			i = len(slices)
			index[label] = i
			slices = append(slices, Slice{Label: label, Total: decimal.Zero})
		}
		if slices[i].Color == "" {
			slices[i].Color = color
		}
		slices[i].Total = slices[i].Total.Add(tx.Amount.Decimal)
		sum = sum.Add(tx.Amount.Decimal)
	}

	for i := range slices {
		if slices[i].Color == "" {
			slices[i].Color = opts.Palette.At(i)
		}
		slices[i].Share = decimal.Zero
		if !sum.IsZero() {
			slices[i].Share = slices[i].Total.Div(sum).Round(4)
		}
	}
	return slices, nil
}
