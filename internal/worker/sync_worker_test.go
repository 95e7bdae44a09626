package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"sothuchi/internal/amqp"
	"sothuchi/internal/core"
	"sothuchi/internal/storage"
)

type fakeOutbox struct {
	entries map[string]*storage.OutboxEntry
	order   []string
}

func newFakeOutbox(ids ...string) *fakeOutbox {
	f := &fakeOutbox{entries: map[string]*storage.OutboxEntry{}}
	for _, id := range ids {
		f.entries[id] = &storage.OutboxEntry{
			Transaction: core.Transaction{
				ID:        id,
				Date:      core.NewDate(2024, 5, 2),
				Category:  "Ăn uống",
				Amount:    core.Money{Dong: 50000},
				Type:      core.Expense,
				Timestamp: time.Now().UTC(),
			},
			SyncStatus: storage.SyncPending,
		}
		f.order = append(f.order, id)
	}
	return f
}

func (f *fakeOutbox) Get(_ context.Context, id string) (storage.OutboxEntry, error) {
	e, ok := f.entries[id]
	if !ok {
		return storage.OutboxEntry{}, fmt.Errorf("entry %s not found", id)
	}
	return *e, nil
}

func (f *fakeOutbox) ListPending(_ context.Context, limit int) ([]storage.OutboxEntry, error) {
	var out []storage.OutboxEntry
	for _, id := range f.order {
		if len(out) == limit {
			break
		}
		if e := f.entries[id]; e.SyncStatus == storage.SyncPending {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeOutbox) MarkSynced(_ context.Context, id string) error {
	f.entries[id].SyncStatus = storage.SyncDone
	return nil
}

func (f *fakeOutbox) MarkSyncError(_ context.Context, id string) error {
	f.entries[id].SyncStatus = storage.SyncError
	return nil
}

type fakeAppender struct {
	appended []string
	failIDs  map[string]bool
}

func (f *fakeAppender) Append(_ context.Context, tx core.Transaction) (string, error) {
	if f.failIDs[tx.ID] {
		return "", errors.New("remote store unavailable")
	}
	f.appended = append(f.appended, tx.ID)
	return fmt.Sprintf("row:%d", len(f.appended)), nil
}

func TestHandleSyncMessage(t *testing.T) {
	outbox := newFakeOutbox("tx-1")
	appender := &fakeAppender{}
	w := NewSyncWorker(outbox, appender, 10)

	msg := amqp.NewTransactionSyncMessage("tx-1")
	if err := w.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.appended) != 1 || appender.appended[0] != "tx-1" {
		t.Errorf("appended = %v", appender.appended)
	}
	if outbox.entries["tx-1"].SyncStatus != storage.SyncDone {
		t.Errorf("status = %q, want synced", outbox.entries["tx-1"].SyncStatus)
	}
}

func TestHandleSyncMessageAlreadySynced(t *testing.T) {
	outbox := newFakeOutbox("tx-1")
	outbox.entries["tx-1"].SyncStatus = storage.SyncDone
	appender := &fakeAppender{}
	w := NewSyncWorker(outbox, appender, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("tx-1")); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(appender.appended) != 0 {
		t.Error("already-synced entry must not be appended again")
	}
}

func TestHandleSyncMessageUnknownID(t *testing.T) {
	w := NewSyncWorker(newFakeOutbox(), &fakeAppender{}, 10)
	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("missing")); err == nil {
		t.Error("unknown ID should surface an error for requeue")
	}
}

func TestHandleSyncMessageAppendFailure(t *testing.T) {
	outbox := newFakeOutbox("tx-1")
	appender := &fakeAppender{failIDs: map[string]bool{"tx-1": true}}
	w := NewSyncWorker(outbox, appender, 10)

	if err := w.HandleSyncMessage(context.Background(), amqp.NewTransactionSyncMessage("tx-1")); err == nil {
		t.Error("append failure should propagate")
	}
	if outbox.entries["tx-1"].SyncStatus != storage.SyncError {
		t.Errorf("status = %q, want error", outbox.entries["tx-1"].SyncStatus)
	}
}

func TestProcessPendingContinuesPastFailures(t *testing.T) {
	outbox := newFakeOutbox("tx-1", "tx-2", "tx-3")
	appender := &fakeAppender{failIDs: map[string]bool{"tx-2": true}}
	w := NewSyncWorker(outbox, appender, 10)

	synced, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if synced != 2 {
		t.Errorf("synced = %d, want 2", synced)
	}
	if outbox.entries["tx-2"].SyncStatus != storage.SyncError {
		t.Errorf("failed entry status = %q", outbox.entries["tx-2"].SyncStatus)
	}
}

func TestProcessPendingRespectsBatchSize(t *testing.T) {
	outbox := newFakeOutbox("a", "b", "c", "d")
	appender := &fakeAppender{}
	w := NewSyncWorker(outbox, appender, 2)

	synced, err := w.ProcessPending(context.Background())
	if err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if synced != 2 {
		t.Errorf("synced = %d, want batch of 2", synced)
	}
}

func TestStartupSyncCheckDrainsBacklog(t *testing.T) {
	outbox := newFakeOutbox("a", "b", "c")
	appender := &fakeAppender{}
	w := NewSyncWorker(outbox, appender, 2)

	if err := w.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if len(appender.appended) != 3 {
		t.Errorf("appended = %d, want all 3", len(appender.appended))
	}
}
