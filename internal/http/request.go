package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"kharacha/internal/core"
)

// Typed request bodies. Unknown fields are rejected at decode time so typos
// like "ammount" fail loudly instead of silently dropping data.
type (
	addExpenseRequest struct {
		UserID      string     `json:"userId"`
		Category    string     `json:"category"`
		Subcategory string     `json:"subcategory"`
		Amount      core.Money `json:"amount"`
		Comments    string     `json:"comments"`
	}

	updateExpenseRequest struct {
		Category    *string     `json:"category"`
		Subcategory *string     `json:"subcategory"`
		Amount      *core.Money `json:"amount"`
		Comments    *string     `json:"comments"`
	}

	listExpensesRequest struct {
		UserID string `json:"userId"`
	}

	credentialsRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

// decodeBody parses a JSON request body into dst, refusing unknown fields
// and trailing garbage. Failures are validation errors.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", core.ErrValidation, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after request body", core.ErrValidation)
	}
	return nil
}

func (req updateExpenseRequest) patch() core.ExpensePatch {
	return core.ExpensePatch{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Amount:      req.Amount,
		Comments:    req.Comments,
	}
}
