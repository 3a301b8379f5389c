package storage

import (
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	t.Run("put and get", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k", "value", time.Minute)

		got, ok := cache.Get("k")
		if !ok {
			t.Fatal("expected cache hit")
		}
		if got != "value" {
			t.Errorf("value = %v, want value", got)
		}
	})

	t.Run("miss", func(t *testing.T) {
		cache := NewMemoryCache()
		if _, ok := cache.Get("absent"); ok {
			t.Error("expected miss for absent key")
		}
	})

	t.Run("expiry", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k", "value", 5*time.Millisecond)
		time.Sleep(20 * time.Millisecond)

		if _, ok := cache.Get("k"); ok {
			t.Error("expected miss after TTL elapsed")
		}
	})

	t.Run("non-positive ttl expires immediately", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k", "value", 0)
		time.Sleep(time.Millisecond)

		if _, ok := cache.Get("k"); ok {
			t.Error("expected zero-TTL entry to be expired")
		}
	})

	t.Run("overwrite refreshes entry", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k", "first", time.Minute)
		cache.Put("k", "second", time.Minute)

		got, ok := cache.Get("k")
		if !ok || got != "second" {
			t.Errorf("got %v/%v, want second/true", got, ok)
		}
	})

	t.Run("delete", func(t *testing.T) {
		cache := NewMemoryCache()
		cache.Put("k", "value", time.Minute)
		cache.Delete("k")

		if _, ok := cache.Get("k"); ok {
			t.Error("expected miss after delete")
		}
	})
}
