package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMemoryCache_SetGetDelete(t *testing.T) {
	m := NewMemoryCache()

	m.Set("key", "value", time.Minute)

	value, found := m.Get("key")
	if !found {
		t.Fatal("Expected key to be present")
	}
	if value != "value" {
		t.Errorf("Expected value, got %v", value)
	}

	m.Delete("key")
	if _, found := m.Get("key"); found {
		t.Error("Expected key to be gone after delete")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	m := NewMemoryCache()

	m.Set("short", "value", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, found := m.Get("short"); found {
		t.Error("Expected expired entry to be evicted on read")
	}
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	m := NewMemoryCache()

	m.Set("user_tasks:a:1", 1, time.Minute)
	m.Set("user_tasks:a:2", 2, time.Minute)
	m.Set("user_tasks:b:1", 3, time.Minute)

	m.DeletePattern("user_tasks:a:*")

	if _, found := m.Get("user_tasks:a:1"); found {
		t.Error("Expected user_tasks:a:1 to be deleted")
	}
	if _, found := m.Get("user_tasks:b:1"); !found {
		t.Error("Expected user_tasks:b:1 to survive")
	}
}

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	c := NewMultiLevelCache(nil)

	if err := c.Set("key", map[string]int{"n": 1}, time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	var dest map[string]int
	if err := c.Get("key", &dest); err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if dest["n"] != 1 {
		t.Errorf("Expected n=1, got %v", dest)
	}

	if err := c.Health(); err != nil {
		t.Errorf("Expected memory-only cache to report healthy, got %v", err)
	}
}

func TestMultiLevelCache_L1Promotion(t *testing.T) {
	mr := miniredis.RunT(t)
	config := DefaultCacheConfig()
	config.Addr = mr.Addr()

	c := NewMultiLevelCache(NewRedisCache(config))

	if err := c.Set("task:7", "cached", time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	// Drop L1 so the next read has to come from Redis and re-populate L1.
	c.l1.Delete("task:7")

	var dest string
	if err := c.Get("task:7", &dest); err != nil {
		t.Fatalf("Failed to get: %v", err)
	}
	if dest != "cached" {
		t.Errorf("Expected cached, got %s", dest)
	}

	if _, found := c.l1.Get("task:7"); !found {
		t.Error("Expected Redis hit to be promoted into L1")
	}
}

func TestMultiLevelCache_Miss(t *testing.T) {
	c := NewMultiLevelCache(nil)

	var dest string
	if err := c.Get("absent", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}
