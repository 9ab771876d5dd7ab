package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"kharacha/internal/core"
)

func TestMemoryStoreOrdering(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	i := 0
	s.now = func() time.Time {
		i++
		return base.Add(time.Duration(i) * time.Minute)
	}

	a, _ := s.InsertExpense(ctx, core.Expense{Owner: "u1", Amount: core.Money{Cents: 1}})
	b, _ := s.InsertExpense(ctx, core.Expense{Owner: "u1", Amount: core.Money{Cents: 2}})
	if _, err := s.InsertExpense(ctx, core.Expense{Owner: "u2", Amount: core.Money{Cents: 3}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := s.FindExpensesByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != b.ID || got[1].ID != a.ID {
		t.Fatalf("order = %+v, want newest first", got)
	}
}

func TestMemoryStoreErrors(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.FindExpenseByID(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("find missing: %v", err)
	}
	if err := s.DeleteExpenseByID(ctx, "1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("delete missing: %v", err)
	}
	if _, err := s.UpdateExpenseByID(ctx, "1", core.ExpensePatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("update missing: %v", err)
	}

	if _, err := s.CreateUser(ctx, "alice", "h"); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := s.CreateUser(ctx, "alice", "h"); !errors.Is(err, core.ErrValidation) {
		t.Errorf("duplicate user: %v", err)
	}
}
