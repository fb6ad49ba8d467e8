package http

import (
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	kind, err := parseKindParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cats, err := s.ledger.ListCategories(r.Context(), owner, kind)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": mapSlice(cats, toCategoryResponse)})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	created, err := s.ledger.CreateCategory(r.Context(), owner, core.Category{
		Kind:  kind,
		Name:  sanitizeInput(req.Name),
		Color: strings.TrimSpace(req.Color),
		Icon:  sanitizeInput(req.Icon),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

// GET /api/transactions?from=YYYY-MM-DD&to=YYYY-MM-DD&kind=income|expense
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var (
		f   ledger.Filter
		err error
	)
	if f.From, err = parseDateParam(r, "from"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.To, err = parseDateParam(r, "to"); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.Kind, err = parseKindParam(r); err != nil {
		s.writeError(w, r, err)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), owner, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": mapSlice(txs, toTransactionResponse)})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	amount, err := core.ParseMoney(req.Amount.String())
	if err != nil {
		s.writeError(w, r, badRequest("amount: %v", err))
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		s.writeError(w, r, badRequest("date must be YYYY-MM-DD"))
		return
	}

	t := core.Transaction{
		Kind:        kind,
		Amount:      amount,
		Date:        date,
		Description: sanitizeInput(req.Description),
	}
	if id := strings.TrimSpace(req.CategoryID); id != "" {
		t.Category = &core.CategoryRef{ID: id}
	}
	created, err := s.ledger.CreateTransaction(r.Context(), owner, t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	if err := s.ledger.DeleteTransaction(r.Context(), owner, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	accounts, err := s.ledger.ListAccounts(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": mapSlice(accounts, toAccountResponse)})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	balance, err := core.ParseMoney(req.Balance.String())
	if err != nil {
		s.writeError(w, r, badRequest("balance: %v", err))
		return
	}
	created, err := s.ledger.CreateAccount(r.Context(), owner, core.BankAccount{
		Name:    sanitizeInput(req.Name),
		Balance: balance,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	assets, err := s.ledger.ListAssets(r.Context(), owner)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assets": mapSlice(assets, toAssetResponse)})
}

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.owner(w, r)
	if !ok {
		return
	}
	var req assetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	current, err := core.ParseMoney(req.CurrentValue.String())
	if err != nil {
		s.writeError(w, r, badRequest("current_value: %v", err))
		return
	}
	initial, err := parseAmount(req.InitialValue)
	if err != nil {
		s.writeError(w, r, badRequest("initial_value: %v", err))
		return
	}
	var acquired core.Date
	if v := strings.TrimSpace(req.AcquiredOn); v != "" {
		if acquired, err = core.ParseDate(v); err != nil {
			s.writeError(w, r, badRequest("acquired_on must be YYYY-MM-DD"))
			return
		}
	}
	created, err := s.ledger.CreateAsset(r.Context(), owner, core.Asset{
		Name:         sanitizeInput(req.Name),
		CurrentValue: current,
		InitialValue: initial,
		AcquiredOn:   acquired,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssetResponse(created))
}
