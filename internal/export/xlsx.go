package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/report"
)

const (
	summarySheet   = "summary"
	seriesSheet    = "series"
	breakdownSheet = "breakdown"
)

// BuildXLSX renders a workbook with a summary, series and breakdown sheet.
// Amounts are numeric cells; the formatter is used for the title only, so
// spreadsheet tools keep doing arithmetic on the values.
func BuildXLSX(d report.Dashboard, f Formatter) ([]byte, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := x.NewSheet(seriesSheet); err != nil {
		return nil, fmt.Errorf("add series sheet: %w", err)
	}
	if _, err := x.NewSheet(breakdownSheet); err != nil {
		return nil, fmt.Errorf("add breakdown sheet: %w", err)
	}

	money, err := x.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("money style: %w", err)
	}
	percent, err := x.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return nil, fmt.Errorf("percent style: %w", err)
	}

	_ = x.SetCellValue(summarySheet, "A1", "Dashboard "+d.Month.String())
	_ = x.SetCellValue(summarySheet, "B1", "Net "+f.FormatAmount(d.Net))
	summary := []struct {
		label string
		value float64
	}{
		{"Income", d.Totals.Income.InexactFloat64()},
		{"Expense", d.Totals.Expense.InexactFloat64()},
		{"Net", d.Net.InexactFloat64()},
		{"Bank balance", d.Snapshot.BankBalance.InexactFloat64()},
		{"Asset value", d.Snapshot.AssetValue.InexactFloat64()},
	}
	for i, row := range summary {
		r := i + 3
		_ = x.SetCellValue(summarySheet, fmt.Sprintf("A%d", r), row.label)
		_ = x.SetCellValue(summarySheet, fmt.Sprintf("B%d", r), row.value)
		_ = x.SetCellStyle(summarySheet, fmt.Sprintf("B%d", r), fmt.Sprintf("B%d", r), money)
	}

	_ = x.SetSheetRow(seriesSheet, "A1", &[]any{"Month", "Label", "Income", "Expense"})
	for i, p := range d.Series {
		r := i + 2
		_ = x.SetSheetRow(seriesSheet, fmt.Sprintf("A%d", r), &[]any{
			p.Month.String(), p.Label, p.Income.InexactFloat64(), p.Expense.InexactFloat64(),
		})
	}
	if n := len(d.Series); n > 0 {
		_ = x.SetCellStyle(seriesSheet, "C2", fmt.Sprintf("D%d", n+1), money)
	}

	_ = x.SetSheetRow(breakdownSheet, "A1", &[]any{"Category", "Total", "Share", "Color"})
	for i, s := range d.Breakdown {
		r := i + 2
		_ = x.SetSheetRow(breakdownSheet, fmt.Sprintf("A%d", r), &[]any{
			s.Label, s.Total.InexactFloat64(), s.Share.InexactFloat64(), s.Color,
		})
	}
	if n := len(d.Breakdown); n > 0 {
		_ = x.SetCellStyle(breakdownSheet, "B2", fmt.Sprintf("B%d", n+1), money)
		_ = x.SetCellStyle(breakdownSheet, "C2", fmt.Sprintf("C%d", n+1), percent)
	}

	var buf bytes.Buffer
	if err := x.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
