package http

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// Amounts are accepted as JSON numbers or numeric strings and returned as
// decimal strings.

type categoryRequest struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type categoryResponse struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Kind: c.Kind.String(), Name: c.Name, Color: c.Color, Icon: c.Icon}
}

type transactionRequest struct {
	Kind        string      `json:"kind"`
	Amount      json.Number `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	CategoryID  string      `json:"category_id"`
}

type categoryRefResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

type transactionResponse struct {
	ID          string               `json:"id"`
	Kind        string               `json:"kind"`
	Amount      *decimal.Decimal     `json:"amount"`
	Date        core.Date            `json:"date"`
	Description string               `json:"description,omitempty"`
	Category    *categoryRefResponse `json:"category,omitempty"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID,
		Kind:        t.Kind.String(),
		Amount:      moneyJSON(t.Amount),
		Date:        t.Date,
		Description: t.Description,
	}
	if t.Category != nil {
		resp.Category = &categoryRefResponse{ID: t.Category.ID, Name: t.Category.Name, Color: t.Category.Color}
	}
	return resp
}

type accountRequest struct {
	Name    string      `json:"name"`
	Balance json.Number `json:"balance"`
}

type accountResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Balance *decimal.Decimal `json:"balance"`
}

func toAccountResponse(a core.BankAccount) accountResponse {
	return accountResponse{ID: a.ID, Name: a.Name, Balance: moneyJSON(a.Balance)}
}

type assetRequest struct {
	Name         string      `json:"name"`
	CurrentValue json.Number `json:"current_value"`
	InitialValue json.Number `json:"initial_value"`
	AcquiredOn   string      `json:"acquired_on"`
}

type assetResponse struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	CurrentValue *decimal.Decimal `json:"current_value"`
	InitialValue *decimal.Decimal `json:"initial_value,omitempty"`
	AcquiredOn   core.Date        `json:"acquired_on"`
}

func toAssetResponse(a core.Asset) assetResponse {
	return assetResponse{
		ID:           a.ID,
		Name:         a.Name,
		CurrentValue: moneyJSON(a.CurrentValue),
		InitialValue: moneyJSON(a.InitialValue),
		AcquiredOn:   a.AcquiredOn,
	}
}

// moneyJSON renders a missing amount as null.
func moneyJSON(m core.Money) *decimal.Decimal {
	if !m.Valid {
		return nil
	}
	d := m.Decimal
	return &d
}

// parseAmount reads an optional amount; empty yields a missing Money.
func parseAmount(n json.Number) (core.Money, error) {
	if n == "" {
		return core.Money{}, nil
	}
	return core.ParseMoney(n.String())
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
