// Package memory provides an in-process tabular store used for local
// development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"sothuchi/internal/core"
)

type Store struct {
	mu    sync.Mutex
	cats  []string
	subs  map[string][]string
	items []core.Transaction
}

func New(cats []string, subs map[string][]string) *Store {
	if subs == nil {
		subs = map[string][]string{}
	}
	return &Store{cats: cats, subs: subs}
}

// NewSeeded returns a store preloaded with a default Vietnamese taxonomy.
func NewSeeded() *Store {
	return New(
		[]string{"Lương", "Ăn uống", "Di chuyển", "Nhà cửa", core.CarCategory, "Khác"},
		map[string][]string{
			"Ăn uống":        {"Cơm văn phòng", "Cà phê", "Nhà hàng"},
			"Di chuyển":      {"Xe buýt", "Taxi"},
			core.CarCategory: {"Xăng", "Bảo dưỡng", "Gửi xe"},
		},
	)
}

// Append stores the transaction and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, tx core.Transaction) (string, error) {
	if err := tx.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, tx)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// ListTransactions returns copies of the stored transactions inside the
// month window. Everything stored went through Validate, so skipped is
// always zero here.
func (s *Store) ListTransactions(_ context.Context, year, month int) ([]core.Transaction, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, tx := range s.items {
		if tx.Date.In(year, month) {
			out = append(out, tx)
		}
	}
	return out, 0, nil
}

// List returns the category taxonomy.
func (s *Store) List(_ context.Context) ([]string, map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cats := append([]string(nil), s.cats...)
	subs := make(map[string][]string, len(s.subs))
	for k, v := range s.subs {
		subs[k] = append([]string(nil), v...)
	}
	return cats, subs, nil
}
