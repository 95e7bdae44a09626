// Package worker drains the outbox into the remote tabular store.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"sothuchi/internal/amqp"
	"sothuchi/internal/core"
	"sothuchi/internal/sheets"
	"sothuchi/internal/storage"
)

// OutboxReader is the slice of the storage repository the worker needs.
type OutboxReader interface {
	Get(ctx context.Context, id string) (storage.OutboxEntry, error)
	ListPending(ctx context.Context, limit int) ([]storage.OutboxEntry, error)
	MarkSynced(ctx context.Context, id string) error
	MarkSyncError(ctx context.Context, id string) error
}

// SyncWorker pushes queued transactions to the remote store, one at a time.
// It is driven two ways: sync messages from the web process, and a periodic
// pass over anything still pending (missed messages, broker downtime).
type SyncWorker struct {
	outbox    OutboxReader
	appender  sheets.TransactionAppender
	batchSize int
}

func NewSyncWorker(outbox OutboxReader, appender sheets.TransactionAppender, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &SyncWorker{
		outbox:    outbox,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes one sync request. Returning an error requeues
// the message, so only transient failures should propagate; entries that were
// already synced are acknowledged silently.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	entry, err := w.outbox.Get(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load outbox entry: %w", err)
	}
	if entry.SyncStatus == storage.SyncDone {
		slog.InfoContext(ctx, "Entry already synced, skipping", "id", msg.ID)
		return nil
	}
	return w.sync(ctx, entry.Transaction)
}

// ProcessPending pushes up to batchSize pending entries and returns how many
// succeeded. Individual failures are marked on the entry and do not stop the
// pass.
func (w *SyncWorker) ProcessPending(ctx context.Context) (int, error) {
	entries, err := w.outbox.ListPending(ctx, w.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending outbox entries", "count", len(entries))

	synced := 0
	for _, entry := range entries {
		if err := w.sync(ctx, entry.Transaction); err != nil {
			slog.ErrorContext(ctx, "Failed to sync entry", "id", entry.Transaction.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

// StartupSyncCheck drains a larger backlog once at boot, covering messages
// lost while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	entries, err := w.outbox.ListPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync check: %w", err)
	}
	if len(entries) == 0 {
		slog.InfoContext(ctx, "Startup sync check: outbox is clean")
		return nil
	}

	slog.WarnContext(ctx, "Startup sync check found pending entries", "count", len(entries))
	for _, entry := range entries {
		if err := w.sync(ctx, entry.Transaction); err != nil {
			slog.ErrorContext(ctx, "Startup sync failed for entry", "id", entry.Transaction.ID, "error", err)
		}
	}
	return nil
}

func (w *SyncWorker) sync(ctx context.Context, tx core.Transaction) error {
	rowRef, err := w.appender.Append(ctx, tx)
	if err != nil {
		if markErr := w.outbox.MarkSyncError(ctx, tx.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to record sync error", "id", tx.ID, "error", markErr)
		}
		return fmt.Errorf("append to remote store: %w", err)
	}

	if err := w.outbox.MarkSynced(ctx, tx.ID); err != nil {
		// The row is in the remote store; a retry would duplicate it.
		slog.ErrorContext(ctx, "Entry pushed but not marked as synced", "id", tx.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Transaction synced to remote store", "id", tx.ID, "row", rowRef)
	return nil
}
