package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestLRUCache_EvictsOldest(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("a should survive, got %v %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return clock }

	c.Set("k", "v")
	clock = clock.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should not be returned")
	}

	c.Set("x", "y")
	c.Set("z", "w")
	clock = clock.Add(30 * time.Second)
	c.Set("z", "fresh")
	clock = clock.Add(45 * time.Second)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("expected 1 cleaned, got %d", n)
	}
	if v, ok := c.Get("z"); !ok || v != "fresh" {
		t.Errorf("z should still be cached, got %q %v", v, ok)
	}
}

func TestLRUCache_ZeroTTLNeverServes(t *testing.T) {
	c := NewLRUCache[int](4, 0)
	c.Set("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("zero ttl should disable caching")
	}
}

func TestLRUCache_Stats(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	c.Get("missing")
	c.Set("a", 1)
	c.Get("a")
	c.Get("a")

	got := c.Stats()
	want := Stats{Hits: 2, Misses: 1, Size: 1}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}
}

func TestLRUCache_Purge(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Size())
	}
	c.Set("a", 3)
	if v, _ := c.Get("a"); v != 3 {
		t.Fatalf("cache unusable after purge, got %d", v)
	}
}

func TestLoader_CollapsesConcurrentMisses(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) (int, error) {
		calls.Add(1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if v, err := l.Get(context.Background(), "total", load); err != nil || v != 42 {
				t.Errorf("unexpected result %d %v", v, err)
			}
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("expected 1 load, got %d", n)
	}

	// Served from cache now
	if _, err := l.Get(context.Background(), "total", func(context.Context) (int, error) {
		return 0, errors.New("should not load")
	}); err != nil {
		t.Fatalf("expected cached value, got %v", err)
	}
}

func TestLoader_Invalidate(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	n := 0
	load := func(context.Context) (int, error) {
		n++
		return n, nil
	}

	if v, _ := l.Get(context.Background(), "k", load); v != 1 {
		t.Fatalf("expected 1, got %d", v)
	}
	l.Invalidate()
	if v, _ := l.Get(context.Background(), "k", load); v != 2 {
		t.Fatalf("expected reload after invalidate, got %d", v)
	}
}

func TestLoader_ErrorsAreNotCached(t *testing.T) {
	l := NewLoader[int](NewLRUCache[int](10, time.Minute))
	boom := errors.New("boom")
	if _, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if v, err := l.Get(context.Background(), "k", func(context.Context) (int, error) { return 7, nil }); err != nil || v != 7 {
		t.Fatalf("expected 7, got %d %v", v, err)
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager()
	m.Register(NewLRUCache[int](1, time.Millisecond))
	m.StartCleanup(5 * time.Millisecond)
	time.Sleep(15 * time.Millisecond)
	m.Stop()
	m.Stop()
}
