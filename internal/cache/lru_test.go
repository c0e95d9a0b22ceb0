package cache

import (
	"errors"
	"sync"
	"testing"
)

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[string, int](2)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok { // a is now most recent
		t.Fatal("a missing")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s should be cached", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 2 {
		t.Errorf("Stats() = %+v, want 1 eviction and 2 entries", s)
	}
}

func TestCacheSetOverwrites(t *testing.T) {
	c := New[int, string](3)
	c.Set(1, "x")
	c.Set(1, "y")
	if v, _ := c.Get(1); v != "y" || c.Len() != 1 {
		t.Errorf("Get(1) = %q, Len() = %d; want y, 1", v, c.Len())
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[int, int](4)
	calls := 0
	create := func() (int, error) { calls++; return 42, nil }

	for range 3 {
		v, err := c.GetOrCreate(7, create)
		if err != nil || v != 42 {
			t.Fatalf("GetOrCreate() = %d, %v", v, err)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	boom := errors.New("boom")
	if _, err := c.GetOrCreate(8, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Errorf("error = %v, want boom", err)
	}
	if _, ok := c.Get(8); ok {
		t.Error("failed create must not be stored")
	}
	if s := c.Stats(); s.Hits != 2 || s.Misses != 3 {
		t.Errorf("Stats() = %+v, want 2 hits 3 misses", s)
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[int, int](8)
	for i := range 6 {
		c.Set(i, i)
	}
	if !c.Delete(0) || c.Delete(0) {
		t.Error("Delete should report presence once")
	}
	if n := c.DeleteFunc(func(k int) bool { return k%2 == 1 }); n != 3 {
		t.Errorf("DeleteFunc removed %d, want 3", n)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	// The recency list must still be consistent after deletions.
	for i := 10; i < 20; i++ {
		c.Set(i, i)
	}
	if c.Len() != 8 {
		t.Errorf("Len() = %d, want capacity 8", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				k := (g*31 + i) % 40
				_, _ = c.GetOrCreate(k, func() (int, error) { return k, nil })
				c.Get(k + 1)
			}
		}()
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len() = %d exceeds capacity", c.Len())
	}
}
