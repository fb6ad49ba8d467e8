// Package export renders dashboards as downloadable XLSX and PDF files.
package export

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fintrack/internal/core"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePDF  = "application/pdf"
)

// Formatter renders amounts with the grouping and decimal separator of a
// language.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter(tag language.Tag) Formatter {
	return Formatter{printer: message.NewPrinter(tag)}
}

// FormatAmount renders d with two decimals, e.g. "1,234.50" in English and
// "1.234,50" in Italian.
func (f Formatter) FormatAmount(d decimal.Decimal) string {
	if f.printer == nil {
		f.printer = message.NewPrinter(language.English)
	}
	return f.printer.Sprintf("%.2f", d.InexactFloat64())
}

// FormatShare renders a 0..1 share as a percentage with one decimal.
func (f Formatter) FormatShare(share decimal.Decimal) string {
	if f.printer == nil {
		f.printer = message.NewPrinter(language.English)
	}
	return f.printer.Sprintf("%.1f%%", share.Shift(2).InexactFloat64())
}

// Filename names an export of month with the given extension.
func Filename(month core.Month, ext string) string {
	return "dashboard-" + month.String() + "." + ext
}
