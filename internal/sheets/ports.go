// Package sheets defines the outbound port for the spreadsheet export.
package sheets

import (
	"context"

	"kharacha/internal/core"
)

// ExpenseExporter mirrors expense records into an external spreadsheet.
// Upsert is keyed on the record ID so replays and version bumps converge on
// one row per record.
type ExpenseExporter interface {
	Upsert(ctx context.Context, e core.Expense) error
	Remove(ctx context.Context, id string) error
}
