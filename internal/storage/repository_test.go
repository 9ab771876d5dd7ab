package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"kharacha/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestInsertAndListByOwner(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first, err := repo.InsertExpense(ctx, core.Expense{
		Owner:       "u1",
		Category:    "Travel",
		Subcategory: "Flights",
		Amount:      core.Money{Cents: 12500},
		Comments:    "conference",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == "" {
		t.Fatal("insert should assign an ID")
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("insert should assign a creation time")
	}

	second, err := repo.InsertExpense(ctx, core.Expense{
		Owner: "u1", Category: "Food & Dining", Subcategory: "Groceries", Amount: core.Money{Cents: 900},
	})
	if err != nil {
		t.Fatalf("insert second: %v", err)
	}
	if _, err := repo.InsertExpense(ctx, core.Expense{Owner: "u2", Amount: core.Money{Cents: 1}}); err != nil {
		t.Fatalf("insert other owner: %v", err)
	}

	got, err := repo.FindExpensesByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("list = %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Errorf("order = [%s %s], want [%s %s]", got[0].ID, got[1].ID, second.ID, first.ID)
	}
	if got[1].Comments != "conference" || got[1].Amount.Cents != 12500 {
		t.Errorf("round trip mismatch: %+v", got[1])
	}
}

func TestSparsePatchPreservesFields(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := repo.InsertExpense(ctx, core.Expense{
		Owner: "u1", Category: "Travel", Subcategory: "Hotels",
		Amount: core.Money{Cents: 2000}, Comments: "keep me",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	amount := core.Money{Cents: 5000}
	updated, err := repo.UpdateExpenseByID(ctx, e.ID, core.ExpensePatch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Amount.Cents != 5000 {
		t.Errorf("amount = %d, want 5000", updated.Amount.Cents)
	}
	if updated.Comments != "keep me" {
		t.Errorf("comments = %q, patch must not touch them", updated.Comments)
	}
	if updated.Category != "Travel" || updated.Subcategory != "Hotels" {
		t.Errorf("categories changed: %q/%q", updated.Category, updated.Subcategory)
	}
}

func TestUpdateMissingIsNotFound(t *testing.T) {
	repo := newTestRepo(t)
	c := "Travel"
	_, err := repo.UpdateExpenseByID(context.Background(), "9999", core.ExpensePatch{Category: &c})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.DeleteExpenseByID(ctx, "42"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: got %v, want ErrNotFound", err)
	}

	e, err := repo.InsertExpense(ctx, core.Expense{Owner: "u1", Amount: core.Money{Cents: 100}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := repo.DeleteExpenseByID(ctx, e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.FindExpenseByID(ctx, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("fetch after delete: got %v, want ErrNotFound", err)
	}
}

func TestUsers(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.ID == "" {
		t.Fatal("user should get an ID")
	}

	if _, err := repo.CreateUser(ctx, "alice", "hash2"); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate username: got %v, want ErrValidation", err)
	}

	found, err := repo.FindUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if found.ID != u.ID || found.PasswordHash != "hash" {
		t.Errorf("found = %+v", found)
	}

	if _, err := repo.FindUserByName(ctx, "bob"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestSyncBookkeeping(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e, err := repo.InsertExpense(ctx, core.Expense{Owner: "u1", Amount: core.Money{Cents: 100}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	pending, err := repo.PendingSyncExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != e.ID || pending[0].Version != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	if err := repo.MarkSynced(ctx, e.ID, 1); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ = repo.PendingSyncExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("pending after sync = %+v", pending)
	}

	// An update re-queues the record with a bumped version, and marking
	// the stale version synced must not clear it.
	amount := core.Money{Cents: 200}
	if _, err := repo.UpdateExpenseByID(ctx, e.ID, core.ExpensePatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, _ = repo.PendingSyncExpenses(ctx, 10)
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Fatalf("pending after update = %+v", pending)
	}
	if err := repo.MarkSynced(ctx, e.ID, 1); err != nil {
		t.Fatalf("mark stale: %v", err)
	}
	pending, _ = repo.PendingSyncExpenses(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("stale mark cleared pending record: %+v", pending)
	}
}
