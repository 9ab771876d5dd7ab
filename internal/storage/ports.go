package storage

import (
	"context"

	"kharacha/internal/core"
)

// Ports consumed by the HTTP layer and the export worker. The persistence
// service behind them is opaque: callers only see insert / find / update /
// delete by id semantics.
type (
	ExpenseStore interface {
		// InsertExpense persists a new record and returns it with the
		// store-assigned ID and creation time filled in.
		InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)

		FindExpenseByID(ctx context.Context, id string) (core.Expense, error)

		// FindExpensesByOwner returns every record owned by owner,
		// newest first.
		FindExpensesByOwner(ctx context.Context, owner string) ([]core.Expense, error)

		// UpdateExpenseByID applies a sparse patch and returns the
		// updated record.
		UpdateExpenseByID(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error)

		DeleteExpenseByID(ctx context.Context, id string) error
	}

	UserStore interface {
		CreateUser(ctx context.Context, username, passwordHash string) (core.User, error)
		FindUserByName(ctx context.Context, username string) (core.User, error)
	}
)
