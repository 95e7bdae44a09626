package summary

import (
	"sync"
	"testing"
	"time"

	"sothuchi/internal/core"
)

func TestCacheFreshnessBoundary(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := Summary{TotalIncome: core.Money{Dong: 1000}, Balance: core.Money{Dong: 1000}}

	c.Put(2024, 5, s, t0)

	if got, ok := c.Get(2024, 5, false, t0.Add(5*time.Minute-time.Second)); !ok || got != s {
		t.Errorf("expected hit just before TTL, got (%+v, %v)", got, ok)
	}
	if _, ok := c.Get(2024, 5, false, t0.Add(5*time.Minute+time.Second)); ok {
		t.Error("expected miss just after TTL")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Now()
	c.Put(2024, 5, Summary{TotalIncome: core.Money{Dong: 1}}, t0)

	c.Invalidate(2024, 5)

	if _, ok := c.Get(2024, 5, false, t0.Add(time.Second)); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestCachePerWindowKeying(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Now()
	may := Summary{TotalIncome: core.Money{Dong: 100}}
	june := Summary{TotalIncome: core.Money{Dong: 200}}

	c.Put(2024, 5, may, t0)
	c.Put(2024, 6, june, t0)

	if got, ok := c.Get(2024, 5, false, t0); !ok || got != may {
		t.Errorf("May window corrupted: (%+v, %v)", got, ok)
	}
	if got, ok := c.Get(2024, 6, false, t0); !ok || got != june {
		t.Errorf("June window corrupted: (%+v, %v)", got, ok)
	}

	// Invalidating one window must not touch the other.
	c.Invalidate(2024, 5)
	if _, ok := c.Get(2024, 5, false, t0); ok {
		t.Error("May should be invalidated")
	}
	if _, ok := c.Get(2024, 6, false, t0); !ok {
		t.Error("June should survive May's invalidation")
	}
}

func TestCacheForceRefreshBypassesWithoutClearing(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Now()
	s := Summary{TotalExpense: core.Money{Dong: 300}}
	c.Put(2024, 5, s, t0)

	if _, ok := c.Get(2024, 5, true, t0); ok {
		t.Error("forceRefresh should signal a miss")
	}
	if got, ok := c.Get(2024, 5, false, t0); !ok || got != s {
		t.Error("forceRefresh must not evict the entry")
	}
}

func TestCachePutOverwrites(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Now()
	c.Put(2024, 5, Summary{TotalIncome: core.Money{Dong: 1}}, t0)
	c.Put(2024, 5, Summary{TotalIncome: core.Money{Dong: 2}}, t0.Add(time.Second))

	got, ok := c.Get(2024, 5, false, t0.Add(2*time.Second))
	if !ok || got.TotalIncome.Dong != 2 {
		t.Errorf("Put should overwrite unconditionally, got (%+v, %v)", got, ok)
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	c := NewCache(5 * time.Minute)
	t0 := time.Now()
	c.Put(2024, 5, Summary{}, t0)
	c.Put(2024, 6, Summary{}, t0)

	c.InvalidateAll()
	if c.Size() != 0 {
		t.Errorf("expected empty cache, size %d", c.Size())
	}
}

func TestCacheCleanExpired(t *testing.T) {
	c := NewCache(50 * time.Millisecond)
	c.Put(2024, 5, Summary{}, time.Now().Add(-time.Second))
	c.Put(2024, 6, Summary{}, time.Now())

	if removed := c.CleanExpired(); removed != 1 {
		t.Errorf("CleanExpired removed %d entries, want 1", removed)
	}
	if c.Size() != 1 {
		t.Errorf("expected 1 surviving entry, got %d", c.Size())
	}
}

func TestCacheDefaultTTL(t *testing.T) {
	if got := NewCache(0).TTL(); got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
	if got := NewCache(time.Minute).TTL(); got != time.Minute {
		t.Errorf("TTL = %v, want 1m", got)
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute)
	var wg sync.WaitGroup

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				now := time.Now()
				c.Put(2024, g%12+1, Summary{TotalIncome: core.Money{Dong: int64(i)}}, now)
				c.Get(2024, g%12+1, false, now)
				if i%50 == 0 {
					c.Invalidate(2024, g%12+1)
				}
			}
		}(g)
	}
	wg.Wait()
}
