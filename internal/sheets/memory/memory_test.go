package memory

import (
	"context"
	"testing"

	"kharacha/internal/core"
)

func TestUpsertAndRemove(t *testing.T) {
	s := New()
	ctx := context.Background()

	a := core.Expense{ID: "1", Owner: "alice", Category: "Food & Dining", Amount: core.Money{Cents: 100}}
	b := core.Expense{ID: "2", Owner: "alice", Category: "Utilities", Amount: core.Money{Cents: 200}}

	if err := s.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	// Upsert with an existing ID replaces the row in place.
	a.Amount.Cents = 500
	if err := s.Upsert(ctx, a); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rows := s.Rows()
	if len(rows) != 2 {
		t.Fatalf("len(Rows()) = %d, want 2", len(rows))
	}
	if rows[0].ID != "1" || rows[0].Amount.Cents != 500 {
		t.Errorf("rows[0] = %+v, want id=1 amount=500", rows[0])
	}

	if err := s.Remove(ctx, "1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(ctx, "missing"); err != nil {
		t.Fatalf("Remove() of absent ID should be a no-op, got %v", err)
	}

	rows = s.Rows()
	if len(rows) != 1 || rows[0].ID != "2" {
		t.Errorf("Rows() after remove = %+v, want only id=2", rows)
	}
}
