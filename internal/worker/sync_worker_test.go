package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"kharacha/internal/amqp"
	"kharacha/internal/core"
	"kharacha/internal/sheets/memory"
	"kharacha/internal/storage"
)

type fakeStore struct {
	expenses map[string]core.Expense
	pending  []storage.PendingExpense
	synced   map[string]int64
	errored  map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		expenses: make(map[string]core.Expense),
		synced:   make(map[string]int64),
		errored:  make(map[string]bool),
	}
}

func (s *fakeStore) FindExpenseByID(_ context.Context, id string) (core.Expense, error) {
	e, ok := s.expenses[id]
	if !ok {
		return core.Expense{}, fmt.Errorf("%w: expense %s", core.ErrNotFound, id)
	}
	return e, nil
}

func (s *fakeStore) PendingSyncExpenses(_ context.Context, limit int) ([]storage.PendingExpense, error) {
	if limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) MarkSynced(_ context.Context, id string, version int64) error {
	s.synced[id] = version
	return nil
}

func (s *fakeStore) MarkSyncError(_ context.Context, id string) error {
	s.errored[id] = true
	return nil
}

type failingExporter struct{}

func (failingExporter) Upsert(context.Context, core.Expense) error {
	return errors.New("sheets unavailable")
}

func (failingExporter) Remove(context.Context, string) error {
	return errors.New("sheets unavailable")
}

func TestHandleSyncMessage(t *testing.T) {
	store := newFakeStore()
	store.expenses["1"] = core.Expense{
		ID:       "1",
		Owner:    "alice",
		Category: "Food & Dining",
		Amount:   core.Money{Cents: 1500},
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	msg := amqp.NewSyncMessage("1", 1)
	if err := w.HandleMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}

	rows := exporter.Rows()
	if len(rows) != 1 || rows[0].ID != "1" {
		t.Fatalf("exported rows = %+v, want one row with id=1", rows)
	}
	if store.synced["1"] != 1 {
		t.Errorf("synced version = %d, want 1", store.synced["1"])
	}
}

func TestHandleSyncMessage_MissingRecordAcks(t *testing.T) {
	w := NewSyncWorker(newFakeStore(), memory.New(), 10)

	// The record was deleted between publish and delivery; the message
	// must ack rather than requeue forever.
	if err := w.HandleSyncMessage(context.Background(), amqp.NewSyncMessage("99", 1)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v, want nil for missing record", err)
	}
}

func TestHandleSyncMessage_ExportFailureMarksError(t *testing.T) {
	store := newFakeStore()
	store.expenses["1"] = core.Expense{ID: "1", Owner: "alice", Amount: core.Money{Cents: 100}}
	w := NewSyncWorker(store, failingExporter{}, 10)

	err := w.HandleSyncMessage(context.Background(), amqp.NewSyncMessage("1", 1))
	if err == nil {
		t.Fatal("HandleSyncMessage() should fail when the exporter fails")
	}
	if !store.errored["1"] {
		t.Error("record should be marked sync_error after export failure")
	}
	if _, ok := store.synced["1"]; ok {
		t.Error("record should not be marked synced after export failure")
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	exporter := memory.New()
	exporter.Upsert(context.Background(), core.Expense{ID: "1", Owner: "alice"})
	w := NewSyncWorker(newFakeStore(), exporter, 10)

	if err := w.HandleMessage(context.Background(), amqp.NewDeleteMessage("1")); err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if len(exporter.Rows()) != 0 {
		t.Errorf("exported rows = %+v, want empty after delete", exporter.Rows())
	}
}

func TestHandleMessage_UnknownKind(t *testing.T) {
	w := NewSyncWorker(newFakeStore(), memory.New(), 10)

	msg := &amqp.ExportMessage{Kind: "purge", ID: "1"}
	if err := w.HandleMessage(context.Background(), msg); err == nil {
		t.Fatal("HandleMessage() should reject an unknown kind")
	}
}

func TestProcessPendingExpenses(t *testing.T) {
	store := newFakeStore()
	store.expenses["1"] = core.Expense{ID: "1", Owner: "alice", Amount: core.Money{Cents: 100}}
	store.expenses["2"] = core.Expense{ID: "2", Owner: "bob", Amount: core.Money{Cents: 200}}
	store.pending = []storage.PendingExpense{
		{ID: "1", Version: 2},
		{ID: "2", Version: 1},
		{ID: "3", Version: 1}, // pending row whose record is gone
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 10)

	if err := w.ProcessPendingExpenses(context.Background()); err != nil {
		t.Fatalf("ProcessPendingExpenses() error = %v", err)
	}

	if len(exporter.Rows()) != 2 {
		t.Fatalf("exported %d rows, want 2", len(exporter.Rows()))
	}
	if store.synced["1"] != 2 || store.synced["2"] != 1 {
		t.Errorf("synced versions = %v, want 1->2, 2->1", store.synced)
	}
	if !store.errored["3"] {
		t.Error("dangling pending row should be marked sync_error")
	}
}

func TestProcessPendingExpenses_RespectsBatchSize(t *testing.T) {
	store := newFakeStore()
	store.expenses["1"] = core.Expense{ID: "1", Owner: "alice"}
	store.expenses["2"] = core.Expense{ID: "2", Owner: "alice"}
	store.pending = []storage.PendingExpense{
		{ID: "1", Version: 1},
		{ID: "2", Version: 1},
	}
	exporter := memory.New()
	w := NewSyncWorker(store, exporter, 1)

	if err := w.ProcessPendingExpenses(context.Background()); err != nil {
		t.Fatalf("ProcessPendingExpenses() error = %v", err)
	}
	if len(exporter.Rows()) != 1 {
		t.Errorf("exported %d rows, want 1 with batch size 1", len(exporter.Rows()))
	}
}
