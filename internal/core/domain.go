package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// Expense is the sole persisted entity: a single spending record owned
	// by one user. ID, Owner and CreatedAt are assigned at creation and
	// never change afterwards.
	Expense struct {
		ID          string    `json:"id"`
		Owner       string    `json:"userId"`
		Category    string    `json:"category"`
		Subcategory string    `json:"subcategory"`
		Amount      Money     `json:"amount"`
		Comments    string    `json:"comments,omitempty"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// ExpensePatch carries a sparse update: nil fields are left untouched.
	ExpensePatch struct {
		Category    *string `json:"category,omitempty"`
		Subcategory *string `json:"subcategory,omitempty"`
		Amount      *Money  `json:"amount,omitempty"`
		Comments    *string `json:"comments,omitempty"`
	}

	// User is an account known to the auth gate.
	User struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

// Error taxonomy. Every failure surfaced by the API wraps one of these so the
// HTTP boundary can translate it into a status code and envelope.
var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrStorage      = errors.New("storage error")
)

// Empty reports whether the patch would change nothing.
func (p ExpensePatch) Empty() bool {
	return p.Category == nil && p.Subcategory == nil && p.Amount == nil && p.Comments == nil
}

// Apply copies the present patch fields onto e.
func (p ExpensePatch) Apply(e *Expense) {
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Subcategory != nil {
		e.Subcategory = *p.Subcategory
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Comments != nil {
		e.Comments = *p.Comments
	}
}

// ValidateNew checks the invariants required at creation time: a non-empty
// owner and a usable amount. The category/subcategory pairing is deliberately
// not checked here; the taxonomy is enforced on the client side only.
func (e Expense) ValidateNew() error {
	if strings.TrimSpace(e.Owner) == "" {
		return fmt.Errorf("%w: user ID is required", ErrValidation)
	}
	if err := e.Amount.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(e.Comments) > 500 {
		return fmt.Errorf("%w: comments too long (max 500 characters)", ErrValidation)
	}
	return nil
}
