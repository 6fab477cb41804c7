package session

import "testing"

func TestCache(t *testing.T) {
	c := NewCache()

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache reported a hit")
	}

	c.Set("key", "value")
	v, ok := c.Get("key")
	if !ok || v != "value" {
		t.Errorf("Get() = %v, %v, want value, true", v, ok)
	}

	c.Set("key", 42)
	if v, _ := c.Get("key"); v != 42 {
		t.Errorf("Set() should replace, got %v", v)
	}

	c.Invalidate("key")
	if _, ok := c.Get("key"); ok {
		t.Error("Get() after Invalidate() reported a hit")
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	c := NewCache()
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}

	c.InvalidateAll()
	if c.Len() != 0 {
		t.Errorf("Len() after InvalidateAll() = %d, want 0", c.Len())
	}
}
