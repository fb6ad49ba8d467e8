// Package core provides money parsing and handling utilities.
//
// Amounts are decimals (shopspring/decimal) so sums stay exact; a Money
// without a value models a NULL amount coming back from the store.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a nullable decimal amount.
type Money struct {
	decimal.NullDecimal
}

// NewMoney wraps a decimal as a present amount.
func NewMoney(d decimal.Decimal) Money {
	return Money{NullDecimal: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// ParseMoney converts a decimal string to Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and a
// leading minus sign. Values are rounded half-up to two decimal places.
//
// Examples:
//
//	ParseMoney("12.34")  -> 12.34
//	ParseMoney("12,345") -> 12.35
//	ParseMoney("-5")     -> -5
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 || strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return NewMoney(d.Round(2)), nil
}

// MustMoney is ParseMoney for literals known to be valid.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic("core: invalid money literal " + s)
	}
	return m
}

// ValidateNonNegative requires a present, non-negative amount. Zero is allowed.
func (m Money) ValidateNonNegative() error {
	if !m.Valid {
		return ErrMissingAmount
	}
	if m.Decimal.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// IsNegative reports whether the amount is present and below zero.
func (m Money) IsNegative() bool {
	return m.Valid && m.Decimal.IsNegative()
}

// String returns the amount with two decimals, or "" when missing.
func (m Money) String() string {
	if !m.Valid {
		return ""
	}
	return m.Decimal.StringFixed(2)
}
