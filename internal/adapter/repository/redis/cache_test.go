package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newMiniredis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "balances:customer:c-1:0", []byte(`{"net":"10"}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "balances:customer:c-1:0")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"net":"10"}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists(cache.prefix + "balances:customer:c-1:0") {
		t.Fatalf("expected key to be stored under the cache prefix")
	}
}

func TestCacheMissIsNotAnError(t *testing.T) {
	client, mr := newMiniredis(t)
	defer mr.Close()
	defer client.Close()

	val, err := NewCache(client).Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("expected no error on miss, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil value on miss, got %q", val)
	}
}

func TestCacheTTL(t *testing.T) {
	client, mr := newMiniredis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "short", []byte("v"), 30*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	mr.FastForward(31 * time.Second)

	val, err := cache.Get(ctx, "short")
	if err != nil || val != nil {
		t.Fatalf("expected expired key, got val=%q err=%v", val, err)
	}
}

func TestCacheDeleteMany(t *testing.T) {
	client, mr := newMiniredis(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatalf("set failed: %v", err)
		}
	}

	if err := cache.Delete(ctx, "a", "b"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := cache.Delete(ctx); err != nil {
		t.Fatalf("empty delete failed: %v", err)
	}

	for k, want := range map[string]bool{"a": false, "b": false, "c": true} {
		val, err := cache.Get(ctx, k)
		if err != nil {
			t.Fatalf("get %s failed: %v", k, err)
		}
		if (val != nil) != want {
			t.Errorf("key %s present=%v, want %v", k, val != nil, want)
		}
	}
}

func TestCacheGetError(t *testing.T) {
	client, mr := newMiniredis(t)
	defer client.Close()
	mr.Close()

	if _, err := NewCache(client).Get(context.Background(), "k"); err == nil {
		t.Fatal("expected error when redis is down")
	}
}

func TestCacheIncr(t *testing.T) {
	client, mr := newMiniredis(t)
	cache := NewCache(client)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := cache.Incr(ctx, "balances:gen:customer:c-1")
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Errorf("incr = %d, want %d", got, want)
		}
	}

	// Readers see the counter through Get.
	val, err := cache.Get(ctx, "balances:gen:customer:c-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "3" {
		t.Errorf("get = %q, want 3", val)
	}
	if mr.TTL(cache.prefix+"balances:gen:customer:c-1") != 0 {
		t.Error("generation counters must not expire")
	}
}
