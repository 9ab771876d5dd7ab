// Package services orchestrates expense operations across storage and the
// async export pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"kharacha/internal/core"
	"kharacha/internal/storage"
)

// Store is what the service needs from persistence: the CRUD port plus the
// version counter used when queueing exports.
type Store interface {
	storage.ExpenseStore
	ExpenseVersion(ctx context.Context, id string) (int64, error)
}

// Publisher enqueues export messages for the sync worker. A nil publisher
// disables the pipeline; mutations still succeed locally.
type Publisher interface {
	PublishExpenseSync(ctx context.Context, id string, version int64) error
	PublishExpenseDelete(ctx context.Context, id string) error
	Close() error
}

// ExpenseService coordinates local persistence with the export queue.
// Persistence is authoritative: a record is saved even when publishing
// fails, and the worker's periodic sweep catches anything the queue missed.
type ExpenseService struct {
	store     Store
	publisher Publisher
}

func NewExpenseService(store Store, publisher Publisher) *ExpenseService {
	return &ExpenseService{store: store, publisher: publisher}
}

// Create saves a new expense and queues it for export.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.store.InsertExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	if err := s.publishSync(ctx, saved.ID, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", saved.ID, "error", err)
	}

	return saved, nil
}

// Get returns a single expense by ID.
func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.FindExpenseByID(ctx, id)
}

// List returns every expense owned by owner, newest first.
func (s *ExpenseService) List(ctx context.Context, owner string) ([]core.Expense, error) {
	return s.store.FindExpensesByOwner(ctx, owner)
}

// Update applies a sparse patch and queues the new version for export.
func (s *ExpenseService) Update(ctx context.Context, id string, patch core.ExpensePatch) (core.Expense, error) {
	updated, err := s.store.UpdateExpenseByID(ctx, id, patch)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	version, err := s.store.ExpenseVersion(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read expense version", "id", id, "error", err)
		return updated, nil
	}
	if err := s.publishSync(ctx, id, version); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "version", version, "error", err)
	}

	return updated, nil
}

// Delete removes an expense and queues the removal for export.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpenseByID(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	if err := s.publishDelete(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id, "error", err)
	}

	return nil
}

func (s *ExpenseService) publishSync(ctx context.Context, id string, version int64) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishExpenseSync(ctx, id, version)
}

func (s *ExpenseService) publishDelete(ctx context.Context, id string) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.PublishExpenseDelete(ctx, id)
}

// Close shuts down the publisher connection, if any. The store is owned by
// the caller.
func (s *ExpenseService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
