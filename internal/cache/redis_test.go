package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	config := DefaultCacheConfig()
	config.Addr = mr.Addr()

	return NewRedisCache(config), mr
}

func TestDefaultCacheConfig(t *testing.T) {
	config := DefaultCacheConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", config.Addr)
	}

	if config.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", config.PoolSize)
	}

	if config.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	defer mr.Close()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	original := payload{Name: "groceries", Count: 3}
	if err := cache.Set("categories:test", original, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	var loaded payload
	if err := cache.Get("categories:test", &loaded); err != nil {
		t.Fatalf("Failed to get from cache: %v", err)
	}

	if loaded != original {
		t.Errorf("Expected %+v, got %+v", original, loaded)
	}
}

func TestRedisCache_GetMiss(t *testing.T) {
	cache, mr := setupTestRedis(t)
	defer mr.Close()

	var dest string
	if err := cache.Get("missing", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	defer mr.Close()

	if err := cache.Set("task:1", "value", time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if err := cache.Delete("task:1"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	exists, err := cache.Exists("task:1")
	if err != nil {
		t.Fatalf("Failed to check existence: %v", err)
	}
	if exists {
		t.Error("Expected key to be gone after delete")
	}
}

func TestRedisCache_DeletePattern(t *testing.T) {
	cache, mr := setupTestRedis(t)
	defer mr.Close()

	keys := []string{
		"user_tasks:alice:page1",
		"user_tasks:alice:page2",
		"user_tasks:bob:page1",
	}
	for _, key := range keys {
		if err := cache.Set(key, "value", time.Minute); err != nil {
			t.Fatalf("Failed to set %s: %v", key, err)
		}
	}

	if err := cache.DeletePattern("user_tasks:alice:*"); err != nil {
		t.Fatalf("Failed to delete pattern: %v", err)
	}

	for _, key := range []string{"user_tasks:alice:page1", "user_tasks:alice:page2"} {
		if exists, _ := cache.Exists(key); exists {
			t.Errorf("Expected %s to be invalidated", key)
		}
	}

	if exists, _ := cache.Exists("user_tasks:bob:page1"); !exists {
		t.Error("Expected other users' keys to survive the pattern delete")
	}
}

func TestRedisCache_Expiration(t *testing.T) {
	cache, mr := setupTestRedis(t)
	defer mr.Close()

	if err := cache.Set("ephemeral", "value", time.Second); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	mr.FastForward(2 * time.Second)

	var dest string
	if err := cache.Get("ephemeral", &dest); err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss after TTL, got %v", err)
	}
}

func TestRedisCache_Health(t *testing.T) {
	cache, mr := setupTestRedis(t)

	if err := cache.Health(); err != nil {
		t.Errorf("Expected healthy cache, got %v", err)
	}

	mr.Close()

	if err := cache.Health(); err == nil {
		t.Error("Expected health check to fail after server shutdown")
	}
}
