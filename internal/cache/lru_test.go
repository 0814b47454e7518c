package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestLRUCacheSetGet(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Set(ctx, "a", "alpha")

	got, ok := c.Get(ctx, "a")
	if !ok {
		t.Fatal("expected hit for key a")
	}
	if got != "alpha" {
		t.Errorf("got %q, want %q", got, "alpha")
	}

	if _, ok := c.Get(ctx, "missing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestLRUCacheOverwrite(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Set(ctx, "a", "first")
	c.Set(ctx, "a", "second")

	got, ok := c.Get(ctx, "a")
	if !ok || got != "second" {
		t.Errorf("got %q ok=%v, want %q", got, ok, "second")
	}
	if c.Size() != 1 {
		t.Errorf("size = %d, want 1", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(3, time.Minute)

	for i := 0; i < 3; i++ {
		c.Set(ctx, fmt.Sprintf("k%d", i), "v")
	}

	// Touch k0 so k1 becomes the least recently used
	c.Get(ctx, "k0")
	c.Set(ctx, "k3", "v")

	if _, ok := c.Get(ctx, "k1"); ok {
		t.Error("expected k1 to be evicted")
	}
	if _, ok := c.Get(ctx, "k0"); !ok {
		t.Error("expected k0 to survive eviction")
	}
	if c.Size() != 3 {
		t.Errorf("size = %d, want 3", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Set(ctx, "a", "alpha")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, 10*time.Millisecond)

	c.Set(ctx, "a", "alpha")
	c.Set(ctx, "b", "beta")
	time.Sleep(20 * time.Millisecond)

	removed := c.CleanExpired()
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	if c.Size() != 0 {
		t.Errorf("size = %d, want 0", c.Size())
	}
}

func TestLRUCacheDelete(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, time.Minute)

	c.Set(ctx, "a", "alpha")
	c.Delete("a")

	if _, ok := c.Get(ctx, "a"); ok {
		t.Error("expected deleted key to miss")
	}
}

func TestManagerCleanup(t *testing.T) {
	ctx := context.Background()
	c := NewLRUCache(10, 5*time.Millisecond)
	c.Set(ctx, "a", "alpha")

	m := NewManager()
	m.Register(c)
	m.StartCleanup(10 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(500 * time.Millisecond)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("cleanup never removed the expired entry")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
