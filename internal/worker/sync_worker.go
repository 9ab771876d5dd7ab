// Package worker drives the spreadsheet export: it consumes queue messages
// and sweeps the store for records the queue missed.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"kharacha/internal/amqp"
	"kharacha/internal/core"
	"kharacha/internal/sheets"
	"kharacha/internal/storage"
)

// Store is the persistence surface the worker needs: record lookup plus the
// sync bookkeeping columns.
type Store interface {
	FindExpenseByID(ctx context.Context, id string) (core.Expense, error)
	PendingSyncExpenses(ctx context.Context, limit int) ([]storage.PendingExpense, error)
	MarkSynced(ctx context.Context, id string, version int64) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker mirrors expense records into the spreadsheet export.
type SyncWorker struct {
	store     Store
	exporter  sheets.ExpenseExporter
	batchSize int
}

func NewSyncWorker(store Store, exporter sheets.ExpenseExporter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		exporter:  exporter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches a queue message to the matching handler.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	switch msg.Kind {
	case amqp.KindSync:
		return w.HandleSyncMessage(ctx, msg)
	case amqp.KindDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

// HandleSyncMessage exports the record named in a sync message. A record
// deleted between publish and delivery just acks; the delete message that
// follows cleans up the sheet.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID, "version", msg.Version)

	expense, err := w.store.FindExpenseByID(ctx, msg.ID)
	if errors.Is(err, core.ErrNotFound) {
		slog.InfoContext(ctx, "Record gone before sync, skipping", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load expense: %w", err)
	}

	return w.export(ctx, expense, msg.Version)
}

// HandleDeleteMessage removes the record's row from the sheet.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.ExportMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if err := w.exporter.Remove(ctx, msg.ID); err != nil {
		return fmt.Errorf("remove from export: %w", err)
	}
	return nil
}

// ProcessPendingExpenses sweeps records whose latest version never reached
// the export. It backs up the queue path against lost messages.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.store.PendingSyncExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("load pending expenses: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, p := range pending {
		expense, err := w.store.FindExpenseByID(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to load pending expense", "id", p.ID, "error", err)
			if markErr := w.store.MarkSyncError(ctx, p.ID); markErr != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
			}
			continue
		}

		if err := w.export(ctx, expense, p.Version); err != nil {
			slog.ErrorContext(ctx, "Failed to export pending expense", "id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// export pushes one record to the sheet and records the synced version.
func (w *SyncWorker) export(ctx context.Context, expense core.Expense, version int64) error {
	if err := w.exporter.Upsert(ctx, expense); err != nil {
		if markErr := w.store.MarkSyncError(ctx, expense.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", expense.ID, "error", markErr)
		}
		return fmt.Errorf("export expense: %w", err)
	}

	// A version mismatch here means the record changed again since the
	// message was published; the pending status stays and the sweep
	// re-exports the newer version.
	if err := w.store.MarkSynced(ctx, expense.ID, version); err != nil {
		slog.ErrorContext(ctx, "Failed to mark synced", "id", expense.ID, "error", err)
	}

	slog.InfoContext(ctx, "Exported expense",
		"id", expense.ID,
		"version", version,
		"owner", expense.Owner,
		"amount_cents", expense.Amount.Cents)

	return nil
}
