package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"sothuchi/internal/core"
	"sothuchi/internal/summary"
)

type fakeOutbox struct {
	entries []core.Transaction
	err     error
}

func (f *fakeOutbox) Enqueue(_ context.Context, tx core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, tx)
	return nil
}

type fakePublisher struct {
	published []string
	err       error
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func validTx() core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(2024, 5, 10),
		Category: "Ăn uống",
		Amount:   core.Money{Dong: 120000},
		Type:     core.Expense,
	}
}

func TestCreateAssignsIDAndQueues(t *testing.T) {
	outbox := &fakeOutbox{}
	publisher := &fakePublisher{}
	svc := NewTransactionService(outbox, publisher, summary.NewCache(0))

	got, err := svc.Create(context.Background(), validTx())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "" {
		t.Error("ID should be assigned")
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
	if len(outbox.entries) != 1 || outbox.entries[0].ID != got.ID {
		t.Errorf("outbox entries = %+v", outbox.entries)
	}
	if len(publisher.published) != 1 || publisher.published[0] != got.ID {
		t.Errorf("published = %v", publisher.published)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := NewTransactionService(outbox, &fakePublisher{}, summary.NewCache(0))

	tx := validTx()
	tx.Amount = core.Money{Dong: 0}
	if _, err := svc.Create(context.Background(), tx); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
	if len(outbox.entries) != 0 {
		t.Error("invalid transaction must not reach the outbox")
	}
}

func TestCreateOutboxErrorFailsRequest(t *testing.T) {
	outbox := &fakeOutbox{err: errors.New("disk full")}
	svc := NewTransactionService(outbox, &fakePublisher{}, summary.NewCache(0))

	if _, err := svc.Create(context.Background(), validTx()); err == nil {
		t.Error("outbox failure should fail the create")
	}
}

func TestCreatePublishErrorIsNotFatal(t *testing.T) {
	outbox := &fakeOutbox{}
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewTransactionService(outbox, publisher, summary.NewCache(0))

	if _, err := svc.Create(context.Background(), validTx()); err != nil {
		t.Fatalf("publish failure must not fail the create: %v", err)
	}
	if len(outbox.entries) != 1 {
		t.Error("entry should still be queued locally")
	}
}

func TestCreateInvalidatesOnlyWrittenMonth(t *testing.T) {
	now := time.Now()
	cache := summary.NewCache(time.Minute)
	cache.Put(2024, 5, summary.Summary{TotalIncome: core.Money{Dong: 1}}, now)
	cache.Put(2024, 6, summary.Summary{TotalIncome: core.Money{Dong: 2}}, now)
	svc := NewTransactionService(&fakeOutbox{}, &fakePublisher{}, cache)

	if _, err := svc.Create(context.Background(), validTx()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, ok := cache.Get(2024, 5, false, now); ok {
		t.Error("written month should be invalidated")
	}
	if _, ok := cache.Get(2024, 6, false, now); !ok {
		t.Error("other months must keep their cached summaries")
	}
}

func TestCreateNilPublisher(t *testing.T) {
	svc := NewTransactionService(&fakeOutbox{}, nil, summary.NewCache(0))
	if _, err := svc.Create(context.Background(), validTx()); err != nil {
		t.Fatalf("nil publisher should degrade gracefully: %v", err)
	}
}
