package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[int](10, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss for unknown key")
	}

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = (%d, %v), want (1, true)", v, ok)
	}

	c.Set("a", 2)
	if v, _ := c.Get("a"); v != 2 {
		t.Errorf("Set should overwrite, got %d", v)
	}
}

func TestLRUTTLExpiry(t *testing.T) {
	c := NewLRU[string](10, 30*time.Millisecond)
	c.Set("k", "v")

	if _, ok := c.Get("k"); !ok {
		t.Error("entry should be fresh immediately after Set")
	}

	time.Sleep(50 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("entry should expire after TTL")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on access, size %d", c.Size())
	}
}

func TestLRUCapacityEviction(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3) // evicts a

	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := c.Get("b"); !ok {
		t.Error("b should survive")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should survive")
	}
}

func TestLRURecencyOrder(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a")    // a becomes most recent
	c.Set("c", 3) // evicts b

	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry should survive")
	}
}

func TestLRUDelete(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	c.Delete("never-existed")

	if _, ok := c.Get("a"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestLRUCleanExpired(t *testing.T) {
	c := NewLRU[int](10, 20*time.Millisecond)
	c.Set("a", 1)
	c.Set("b", 2)
	time.Sleep(40 * time.Millisecond)
	c.Set("c", 3)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("CleanExpired removed %d, want 2", removed)
	}
	if c.Size() != 1 {
		t.Errorf("size after cleanup = %d, want 1", c.Size())
	}
}

func TestManagerCleanupLifecycle(t *testing.T) {
	m := NewManager()
	c := NewLRU[int](10, 10*time.Millisecond)
	m.Register(c)

	c.Set("a", 1)
	m.StartCleanup(20 * time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	m.Stop()

	if c.Size() != 0 {
		t.Errorf("manager should have cleaned expired entries, size %d", c.Size())
	}
}
