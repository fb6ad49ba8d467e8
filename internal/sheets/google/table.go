package google

import (
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/report"
)

// BuildTable lays a dashboard out as spreadsheet rows: a summary block, the
// trailing series and the category breakdown, separated by blank rows.
// Amounts are fixed two-decimal strings so USER_ENTERED parses them as numbers.
func BuildTable(d report.Dashboard) [][]any {
	rows := [][]any{
		{"Month", d.Month.String()},
		{"Income", amount(d.Totals.Income)},
		{"Expense", amount(d.Totals.Expense)},
		{"Net", amount(d.Net)},
		{"Bank balance", amount(d.Snapshot.BankBalance)},
		{"Asset value", amount(d.Snapshot.AssetValue)},
		{},
		{"Series"},
		{"Month", "Label", "Income", "Expense"},
	}
	for _, p := range d.Series {
		rows = append(rows, []any{p.Month.String(), p.Label, amount(p.Income), amount(p.Expense)})
	}

	rows = append(rows, []any{}, []any{"Breakdown"}, []any{"Category", "Total", "Share", "Color"})
	for _, s := range d.Breakdown {
		rows = append(rows, []any{cellText(s.Label), amount(s.Total), s.Share.StringFixed(4), s.Color})
	}
	return rows
}

// cellText keeps user text literal under USER_ENTERED: a leading quote stops
// Sheets from reading it as a formula.
func cellText(s string) string {
	if s != "" && strings.ContainsRune("=+-@", rune(s[0])) {
		return "'" + s
	}
	return s
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
