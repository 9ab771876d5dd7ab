package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"kharacha/internal/core"
)

// handleAddExpense creates an expense for the authenticated user. The body
// carries the owner explicitly and it must match the bearer token.
func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req addExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: user ID is required", core.ErrValidation))
		return
	}
	if req.UserID != callerID(r.Context()) {
		respondError(r.Context(), w, fmt.Errorf("%w: cannot create expenses for another user", core.ErrUnauthorized))
		return
	}

	expense := core.Expense{
		Owner:       req.UserID,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      req.Amount,
		Comments:    req.Comments,
	}
	if err := expense.ValidateNew(); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	saved, err := s.expenses.Create(r.Context(), expense)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	s.listCache.Delete(saved.Owner)
	writeSuccess(r.Context(), w, http.StatusCreated, "expense added successfully", saved)
}

// handleListExpenses returns every expense of the requested user, newest
// first. The requested user must be the caller.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	var req listExpensesRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: user ID is required", core.ErrValidation))
		return
	}
	if req.UserID != callerID(r.Context()) {
		respondError(r.Context(), w, fmt.Errorf("%w: cannot read another user's expenses", core.ErrUnauthorized))
		return
	}

	if cached, ok := s.listCache.Get(req.UserID); ok {
		slog.DebugContext(r.Context(), "Expense list cache hit", "owner", req.UserID, "count", len(cached))
		writeSuccess(r.Context(), w, http.StatusOK, "expenses fetched successfully", cached)
		return
	}

	expenses, err := s.expenses.List(r.Context(), req.UserID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}

	s.listCache.Set(req.UserID, expenses)
	writeSuccess(r.Context(), w, http.StatusOK, "expenses fetched successfully", expenses)
}

// handleUpdateExpense applies a sparse patch to one record. Only the owner
// may touch it; a failed ownership check leaves the record unchanged.
func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req updateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	if req.Amount != nil {
		if err := req.Amount.Validate(); err != nil {
			respondError(r.Context(), w, fmt.Errorf("%w: %v", core.ErrValidation, err))
			return
		}
	}
	if req.Comments != nil && len(*req.Comments) > 500 {
		respondError(r.Context(), w, fmt.Errorf("%w: comments too long (max 500 characters)", core.ErrValidation))
		return
	}

	existing, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if existing.Owner != callerID(r.Context()) {
		respondError(r.Context(), w, fmt.Errorf("%w: expense belongs to another user", core.ErrUnauthorized))
		return
	}

	updated, err := s.expenses.Update(r.Context(), id, req.patch())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	s.listCache.Delete(updated.Owner)
	writeSuccess(r.Context(), w, http.StatusOK, "expense updated successfully", updated)
}

// handleDeleteExpense removes one record after an ownership check.
func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.expenses.Get(r.Context(), id)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	if existing.Owner != callerID(r.Context()) {
		respondError(r.Context(), w, fmt.Errorf("%w: expense belongs to another user", core.ErrUnauthorized))
		return
	}

	if err := s.expenses.Delete(r.Context(), id); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	s.listCache.Delete(existing.Owner)
	writeSuccess(r.Context(), w, http.StatusOK, "expense deleted successfully", existing)
}

// handleTaxonomy serves the category table so clients can populate their
// pickers. The server does not enforce it on writes.
func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, "taxonomy fetched successfully", s.taxonomy.Entries())
}
