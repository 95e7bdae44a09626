// Package services orchestrates the transaction write path: outbox append,
// sync message publish, and summary cache invalidation.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sothuchi/internal/core"
	"sothuchi/internal/summary"
)

// Outbox is the slice of the storage repository the service needs.
type Outbox interface {
	Enqueue(ctx context.Context, tx core.Transaction) error
}

// SyncPublisher notifies the worker that an outbox entry is waiting.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
}

// TransactionService owns the write path. The summary cache is invalidated
// synchronously before the write is acknowledged, so a subsequent read never
// serves pre-write totals.
type TransactionService struct {
	outbox    Outbox
	publisher SyncPublisher
	cache     *summary.Cache
}

func NewTransactionService(outbox Outbox, publisher SyncPublisher, cache *summary.Cache) *TransactionService {
	return &TransactionService{
		outbox:    outbox,
		publisher: publisher,
		cache:     cache,
	}
}

// Create validates and queues a new transaction. The assigned ID and
// creation timestamp are returned on the stored record.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = uuid.NewString()
	tx.Timestamp = time.Now().UTC()

	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.outbox.Enqueue(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("queue transaction: %w", err)
	}

	// Stale totals must never survive a known write.
	if s.cache != nil {
		s.cache.Invalidate(tx.Date.Year(), tx.Date.Month())
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTransactionSync(ctx, tx.ID); err != nil {
			// The periodic outbox pass will pick the entry up.
			slog.ErrorContext(ctx, "Failed to publish sync message", "id", tx.ID, "error", err)
		}
	} else {
		slog.WarnContext(ctx, "Sync publisher not available, relying on periodic outbox pass", "id", tx.ID)
	}

	return tx, nil
}
