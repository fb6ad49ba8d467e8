package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"fintrack/internal/report"
)

// BuildPDF renders a one-page summary of the dashboard.
func BuildPDF(d report.Dashboard, f Formatter) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Arial", "B", 14)
	pdf.AddPage()

	pdf.Cell(0, 8, "Dashboard "+d.Month.String())
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	for _, line := range []struct{ label, value string }{
		{"Income", f.FormatAmount(d.Totals.Income)},
		{"Expense", f.FormatAmount(d.Totals.Expense)},
		{"Net", f.FormatAmount(d.Net)},
		{"Bank balance", f.FormatAmount(d.Snapshot.BankBalance)},
		{"Asset value", f.FormatAmount(d.Snapshot.AssetValue)},
	} {
		pdf.CellFormat(50, 6, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(50, 6, line.value, "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(30, 6, "Month", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Income", "1", 0, "C", false, 0, "")
	pdf.CellFormat(50, 6, "Expense", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, p := range d.Series {
		pdf.CellFormat(30, 6, tr(fmt.Sprintf("%s %d", p.Label, p.Month.Year)), "1", 0, "C", false, 0, "")
		pdf.CellFormat(50, 6, f.FormatAmount(p.Income), "1", 0, "R", false, 0, "")
		pdf.CellFormat(50, 6, f.FormatAmount(p.Expense), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 6, "Category", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Total", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Share", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, s := range d.Breakdown {
		r, g, b := hexRGB(s.Color)
		pdf.SetFillColor(r, g, b)
		pdf.CellFormat(4, 6, "", "1", 0, "C", true, 0, "")
		pdf.CellFormat(56, 6, tr(s.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, f.FormatAmount(s.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, f.FormatShare(s.Share), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// hexRGB parses "#rrggbb", falling back to grey.
func hexRGB(hex string) (int, int, int) {
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return 200, 200, 200
	}
	return r, g, b
}
