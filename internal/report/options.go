// Package report turns owner-scoped ledger rows into the figures shown on the
// dashboard: monthly totals, point-in-time totals, a trailing month series and
// a category breakdown.
//
// Every function here is pure. The reference time is always an argument and
// nothing reads the wall clock or the process locale.
package report

import (
	"errors"
	"time"

	"fintrack/internal/core"
)

// DefaultWindow is the length of the trailing series on the dashboard.
const DefaultWindow = 6

// DefaultUncategorizedLabel groups expense rows that have no category.
const DefaultUncategorizedLabel = "Uncategorized"

// ErrInvalidWindow is returned for a trailing series shorter than one month.
var ErrInvalidWindow = errors.New("window must be at least one month")

// Options controls the presentation-facing parts of a computation.
type Options struct {
	// Location decides which calendar month "now" falls in. Defaults to UTC.
	Location *time.Location
	// Labels names the months of a series. Defaults to English abbreviations.
	Labels MonthLabeler
	// Palette colors breakdown groups without an explicit color.
	Palette Palette
	// UncategorizedLabel names the group of rows without a category.
	UncategorizedLabel string
}

// DefaultOptions returns UTC, English labels and the default palette.
func DefaultOptions() Options {
	return Options{
		Location:           time.UTC,
		Labels:             EnglishMonths,
		Palette:            DefaultPalette,
		UncategorizedLabel: DefaultUncategorizedLabel,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Location == nil {
		o.Location = def.Location
	}
	if o.Labels == nil {
		o.Labels = def.Labels
	}
	if len(o.Palette) == 0 {
		o.Palette = def.Palette
	}
	if o.UncategorizedLabel == "" {
		o.UncategorizedLabel = def.UncategorizedLabel
	}
	return o
}

// ReferenceTime returns a moment well inside m in the options' location, for
// callers that ask for a month rather than an instant.
func (o Options) ReferenceTime(m core.Month) time.Time {
	o = o.withDefaults()
	return time.Date(m.Year, m.Month, 15, 12, 0, 0, 0, o.Location)
}
