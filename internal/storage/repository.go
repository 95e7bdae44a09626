// Package storage holds the write-behind outbox: transactions are appended
// here first and a worker pushes them to the remote store afterwards. The
// outbox is never read to serve summaries; the remote store stays the sole
// source of truth for reads.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"sothuchi/internal/core"

	_ "modernc.org/sqlite"
)

// SyncStatus values for outbox entries.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// OutboxEntry is one queued transaction plus its sync state.
type OutboxEntry struct {
	Transaction core.Transaction
	CreatedAt   time.Time
	SyncStatus  string
}

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
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

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Enqueue appends a validated transaction to the outbox.
func (r *Repository) Enqueue(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO outbox (id, tx_date, category, sub_category, amount_dong, tx_type,
			receipt_link, quantity, payment_method, note, fuel_liters, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.Date.Format("2006-01-02"),
		tx.Category,
		tx.SubCategory,
		tx.Amount.Dong,
		string(tx.Type),
		tx.ReceiptLink,
		tx.Quantity,
		tx.PaymentMethod,
		tx.Note,
		tx.FuelLiters,
		tx.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("enqueue transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction queued for sync",
		"id", tx.ID,
		"amount_dong", tx.Amount.Dong,
		"type", string(tx.Type),
		"category", tx.Category)
	return nil
}

// Get returns one outbox entry by transaction ID.
func (r *Repository) Get(ctx context.Context, id string) (OutboxEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, tx_date, category, sub_category, amount_dong, tx_type,
			receipt_link, quantity, payment_method, note, fuel_liters,
			created_at, sync_status
		FROM outbox WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("get outbox entry %s: %w", id, err)
	}
	return entry, nil
}

// ListPending returns up to limit entries that still need syncing, oldest
// first.
func (r *Repository) ListPending(ctx context.Context, limit int) ([]OutboxEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tx_date, category, sub_category, amount_dong, tx_type,
			receipt_link, quantity, payment_method, note, fuel_liters,
			created_at, sync_status
		FROM outbox WHERE sync_status = ? ORDER BY created_at LIMIT ?`,
		SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending entries: %w", err)
	}
	defer rows.Close()

	var out []OutboxEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// MarkSynced records a successful push to the remote store.
func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, time.Now().UTC().Format(time.RFC3339Nano), id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	slog.InfoContext(ctx, "Outbox entry marked as synced", "id", id)
	return nil
}

// MarkSyncError flags an entry whose push failed; the periodic pass will not
// retry it until an operator intervenes.
func (r *Repository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET sync_status = ? WHERE id = ?`,
		SyncError, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Outbox entry marked with sync error", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (OutboxEntry, error) {
	var (
		entry      OutboxEntry
		dateStr    string
		typStr     string
		createdStr string
	)
	err := s.Scan(
		&entry.Transaction.ID,
		&dateStr,
		&entry.Transaction.Category,
		&entry.Transaction.SubCategory,
		&entry.Transaction.Amount.Dong,
		&typStr,
		&entry.Transaction.ReceiptLink,
		&entry.Transaction.Quantity,
		&entry.Transaction.PaymentMethod,
		&entry.Transaction.Note,
		&entry.Transaction.FuelLiters,
		&createdStr,
		&entry.SyncStatus,
	)
	if err != nil {
		return OutboxEntry{}, err
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, createdStr)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("stored created_at %q: %w", createdStr, err)
	}
	entry.Transaction.Date = date
	entry.Transaction.Type = core.TxType(typStr)
	entry.CreatedAt = createdAt
	entry.Transaction.Timestamp = createdAt
	return entry, nil
}
