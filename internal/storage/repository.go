// Package storage implements the persistence service over SQLite, plus an
// in-memory variant for tests and dependency-free development.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kharacha/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the export worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = "id, owner, category, subcategory, amount_cents, comments, created_at"

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e  core.Expense
		id int64
	)
	err := row.Scan(&id, &e.Owner, &e.Category, &e.Subcategory, &e.Amount.Cents, &e.Comments, &e.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.ID = strconv.FormatInt(id, 10)
	return e, nil
}

// InsertExpense implements ExpenseStore.
func (r *SQLiteRepository) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (owner, category, subcategory, amount_cents, comments, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Owner, e.Category, e.Subcategory, e.Amount.Cents, e.Comments, e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: insert expense: %v", core.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: insert expense id: %v", core.ErrStorage, err)
	}
	e.ID = strconv.FormatInt(id, 10)

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"owner", e.Owner,
		"category", e.Category,
		"amount_cents", e.Amount.Cents)

	return e, nil
}

// FindExpenseByID implements ExpenseStore.
func (r *SQLiteRepository) FindExpenseByID(ctx context.Context, id string) (core.Expense, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Expense{}, err
	}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, numID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: find expense: %v", core.ErrStorage, err)
	}
	return e, nil
}

// FindExpensesByOwner implements ExpenseStore. Records come back newest
// first; creation time is the sort key.
func (r *SQLiteRepository) FindExpensesByOwner(ctx context.Context, owner string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE owner = ? ORDER BY created_at DESC, id DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("%w: list expenses: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan expense: %v", core.ErrStorage, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list expenses: %v", core.ErrStorage, err)
	}
	return out, nil
}

// UpdateExpenseByID implements ExpenseStore. Only the fields present in the
// patch are written; the version bump re-queues the record for export.
func (r *SQLiteRepository) UpdateExpenseByID(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Expense{}, err
	}

	sets := []string{"version = version + 1", "sync_status = ?"}
	args := []any{SyncPending}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Subcategory != nil {
		sets = append(sets, "subcategory = ?")
		args = append(args, *patch.Subcategory)
	}
	if patch.Amount != nil {
		sets = append(sets, "amount_cents = ?")
		args = append(args, patch.Amount.Cents)
	}
	if patch.Comments != nil {
		sets = append(sets, "comments = ?")
		args = append(args, *patch.Comments)
	}
	args = append(args, numID)

	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: update expense: %v", core.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("%w: update expense: %v", core.ErrStorage, err)
	}
	if affected == 0 {
		return core.Expense{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}

	return r.FindExpenseByID(ctx, id)
}

// DeleteExpenseByID implements ExpenseStore.
func (r *SQLiteRepository) DeleteExpenseByID(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, numID)
	if err != nil {
		return fmt.Errorf("%w: delete expense: %v", core.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete expense: %v", core.ErrStorage, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return nil
}

// CreateUser implements UserStore.
func (r *SQLiteRepository) CreateUser(ctx context.Context, username, passwordHash string) (core.User, error) {
	u := core.User{Username: username, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, created_at)
		VALUES (?, ?, ?)`,
		u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return core.User{}, fmt.Errorf("%w: username already taken", core.ErrValidation)
		}
		return core.User{}, fmt.Errorf("%w: create user: %v", core.ErrStorage, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("%w: create user id: %v", core.ErrStorage, err)
	}
	u.ID = strconv.FormatInt(id, 10)
	return u, nil
}

// FindUserByName implements UserStore.
func (r *SQLiteRepository) FindUserByName(ctx context.Context, username string) (core.User, error) {
	var (
		u  core.User
		id int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at
		FROM users WHERE username = ?`, username).
		Scan(&id, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("%w: user %s", core.ErrNotFound, username)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("%w: find user: %v", core.ErrStorage, err)
	}
	u.ID = strconv.FormatInt(id, 10)
	return u, nil
}

// ExpenseVersion returns the current version counter of a record. Versions
// start at 1 and bump on every update.
func (r *SQLiteRepository) ExpenseVersion(ctx context.Context, id string) (int64, error) {
	numID, err := parseID(id)
	if err != nil {
		return 0, err
	}
	var version int64
	err = r.db.QueryRowContext(ctx, `SELECT version FROM expenses WHERE id = ?`, numID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: expense version: %v", core.ErrStorage, err)
	}
	return version, nil
}

// PendingExpense is the minimal record the export worker needs to queue a
// sync.
type PendingExpense struct {
	ID      string
	Version int64
}

// PendingSyncExpenses returns records whose latest version has not reached
// the export yet, oldest first.
func (r *SQLiteRepository) PendingSyncExpenses(ctx context.Context, limit int) ([]PendingExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version FROM expenses
		WHERE sync_status = ?
		ORDER BY created_at ASC
		LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: pending expenses: %v", core.ErrStorage, err)
	}
	defer rows.Close()

	var out []PendingExpense
	for rows.Next() {
		var (
			id int64
			p  PendingExpense
		)
		if err := rows.Scan(&id, &p.Version); err != nil {
			return nil, fmt.Errorf("%w: scan pending: %v", core.ErrStorage, err)
		}
		p.ID = strconv.FormatInt(id, 10)
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkSynced records a successful export of the given version. A record
// updated again since then keeps its pending status.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version int64) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE expenses SET sync_status = ?
		WHERE id = ? AND version = ?`, SyncDone, numID, version)
	if err != nil {
		return fmt.Errorf("%w: mark synced: %v", core.ErrStorage, err)
	}
	return nil
}

// MarkSyncError flags a record whose export keeps failing.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `UPDATE expenses SET sync_status = ? WHERE id = ?`, SyncError, numID)
	if err != nil {
		return fmt.Errorf("%w: mark sync error: %v", core.ErrStorage, err)
	}
	return nil
}

// parseID validates the opaque ID format. Unparseable IDs can never match a
// record, so they surface as NotFound rather than a storage fault.
func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return n, nil
}
