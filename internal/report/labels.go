package report

import (
	"fmt"

	"golang.org/x/text/language"

	"fintrack/internal/core"
)

// MonthLabeler names a month for chart axes.
type MonthLabeler interface {
	Label(m core.Month) string
}

// ShortMonths labels months with a fixed table of twelve abbreviations.
type ShortMonths [12]string

// Label returns the abbreviation for m's calendar month.
func (s ShortMonths) Label(m core.Month) string {
	return s[int(m.Month)-1]
}

var (
	EnglishMonths    = ShortMonths{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	ItalianMonths    = ShortMonths{"Gen", "Feb", "Mar", "Apr", "Mag", "Giu", "Lug", "Ago", "Set", "Ott", "Nov", "Dic"}
	PortugueseMonths = ShortMonths{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}
	SpanishMonths    = ShortMonths{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}
	GermanMonths     = ShortMonths{"Jan", "Feb", "Mär", "Apr", "Mai", "Jun", "Jul", "Aug", "Sep", "Okt", "Nov", "Dez"}
	FrenchMonths     = ShortMonths{"Janv", "Févr", "Mars", "Avr", "Mai", "Juin", "Juil", "Août", "Sept", "Oct", "Nov", "Déc"}
)

// supported lists the label tables in matcher order; English is the fallback.
var supported = []struct {
	tag    language.Tag
	labels ShortMonths
}{
	{language.English, EnglishMonths},
	{language.Italian, ItalianMonths},
	{language.Portuguese, PortugueseMonths},
	{language.Spanish, SpanishMonths},
	{language.German, GermanMonths},
	{language.French, FrenchMonths},
}

var labelMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(supported))
	for i, s := range supported {
		tags[i] = s.tag
	}
	return language.NewMatcher(tags)
}()

// LabelsFor picks the closest supported label table for tag.
func LabelsFor(tag language.Tag) ShortMonths {
	_, idx, conf := labelMatcher.Match(tag)
	if conf == language.No {
		return EnglishMonths
	}
	return supported[idx].labels
}

// ParseLabels resolves a BCP 47 language string such as "it" or "pt-BR".
func ParseLabels(lang string) (ShortMonths, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return ShortMonths{}, fmt.Errorf("parse label language %q: %w", lang, err)
	}
	return LabelsFor(tag), nil
}
