package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"kharacha/internal/auth"
	"kharacha/internal/core"
	apihttp "kharacha/internal/http"
	"kharacha/internal/services"
	"kharacha/internal/storage"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := services.NewExpenseService(store, nil)
	authMgr := auth.NewManager("test-secret", time.Hour)
	taxonomy := core.DefaultTaxonomy()

	srv := apihttp.NewServer(":0", svc, store, authMgr, &taxonomy)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		srv.Shutdown(context.Background())
	})

	return New(ts.URL, taxonomy)
}

func TestSessionAndRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if err := c.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if c.UserID() == "" {
		t.Fatal("UserID should be set after register")
	}

	saved, err := c.Add(ctx, "Food & Dining", "Groceries", core.Money{Cents: 1250}, "weekly shop")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Errorf("Add() should return the stored record, got %+v", saved)
	}

	// The new record is already local; no reload needed.
	records := c.Records()
	if len(records) != 1 || records[0].ID != saved.ID {
		t.Fatalf("Records() = %+v, want the added record", records)
	}

	// A fresh session sees the same data via Load.
	c2 := New(c.baseURL, core.DefaultTaxonomy())
	if err := c2.Login(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := c2.Load(ctx); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c2.Records(); len(got) != 1 || got[0].Comments != "weekly shop" {
		t.Errorf("Load() records = %+v, want the stored record", got)
	}
}

func TestLoadRequiresSession(t *testing.T) {
	c := newTestClient(t)

	if err := c.Load(context.Background()); !errors.Is(err, core.ErrUnauthorized) {
		t.Errorf("Load() before login = %v, want ErrUnauthorized", err)
	}
}

func TestTaxonomyCheckedLocally(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err := c.Add(ctx, "Gambling", "", core.Money{Cents: 100}, "")
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Add() with unknown category = %v, want ErrValidation", err)
	}

	_, err = c.Add(ctx, "Food & Dining", "Fuel", core.Money{Cents: 100}, "")
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("Add() with mismatched pair = %v, want ErrValidation", err)
	}

	if len(c.Records()) != 0 {
		t.Error("rejected adds must not touch the local list")
	}
}

func TestEditMergesReturnedRecord(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	saved, err := c.Add(ctx, "Utilities", "Internet", core.Money{Cents: 3000}, "monthly bill")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	amount := core.Money{Cents: 3500}
	updated, err := c.Edit(ctx, saved.ID, core.ExpensePatch{Amount: &amount})
	if err != nil {
		t.Fatalf("Edit() error = %v", err)
	}
	if updated.Amount.Cents != 3500 || updated.Comments != "monthly bill" {
		t.Errorf("Edit() returned %+v, want merged record", updated)
	}

	records := c.Records()
	if len(records) != 1 || records[0].Amount.Cents != 3500 {
		t.Errorf("local record after Edit = %+v, want amount 3500", records)
	}

	_, err = c.Edit(ctx, "999", core.ExpensePatch{Amount: &amount})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Edit() of missing record = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	saved, err := c.Add(ctx, "Travel", "Flights", core.Money{Cents: 20000}, "")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := c.Remove(ctx, saved.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(c.Records()) != 0 {
		t.Error("Remove() should drop the local record")
	}

	if err := c.Remove(ctx, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("second Remove() = %v, want ErrNotFound", err)
	}
}

func TestFilterAndSummarize(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	if err := c.Register(ctx, "alice", "correct-horse"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := c.Add(ctx, "Food & Dining", "Groceries", core.Money{Cents: 1000}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := c.Add(ctx, "Food & Dining", "Restaurants", core.Money{Cents: 500}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := c.Add(ctx, "Travel", "Hotels", core.Money{Cents: 2000}, ""); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	filtered := c.Filter(core.FilterOptions{Category: "Food & Dining"})
	if len(filtered) != 2 {
		t.Errorf("Filter by category = %d records, want 2", len(filtered))
	}

	filtered = c.Filter(core.FilterOptions{Category: "Food & Dining", Subcategory: "Groceries"})
	if len(filtered) != 1 {
		t.Errorf("conjunctive filter = %d records, want 1", len(filtered))
	}

	summary := c.Summarize(core.FilterOptions{})
	if summary.Total.Cents != 3500 {
		t.Errorf("Summarize total = %d, want 3500", summary.Total.Cents)
	}
	if len(summary.ByCategory) != 2 {
		t.Errorf("Summarize categories = %d, want 2", len(summary.ByCategory))
	}

	cats, subs := c.Options()
	if len(cats) != 2 {
		t.Errorf("Options categories = %v, want 2 distinct", cats)
	}
	if len(subs) != 3 {
		t.Errorf("Options subcategories = %v, want 3 distinct", subs)
	}
}
