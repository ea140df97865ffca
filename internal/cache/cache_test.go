// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "page:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	addr := envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), addr, os.Getenv("VALKEY_PASSWORD"), 1)
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	if pong, err := client.Ping(context.Background()).Result(); err != nil || pong != "PONG" {
		t.Errorf("Ping: got %q, %v", pong, err)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	_, err := ConnectValkey(context.Background(), "127.0.0.1:1", "", 1)
	if err == nil {
		t.Fatal("expected error for unreachable Valkey")
	}
	if !strings.Contains(err.Error(), "after 1 attempt(s)") {
		t.Errorf("error %q should report the attempts", err)
	}
}

func TestPageKey(t *testing.T) {
	if got := PageKey(HomeKey, 7); got != "home@7" {
		t.Errorf("PageKey: got %q, want home@7", got)
	}
	if PageKey(CatalogKey, 1) == PageKey(CatalogKey, 2) {
		t.Error("different content versions must not share a key")
	}
}

func TestPageCacheSetAndGet(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()
	key := PageKey(CatalogKey, 3)

	if data, ok := pc.Get(ctx, key); ok || data != nil {
		t.Fatalf("expected miss, got %q", data)
	}

	html := []byte("<html><body>Catálogo</body></html>")
	pc.Set(ctx, key, html)

	data, ok := pc.Get(ctx, key)
	if !ok || string(data) != string(html) {
		t.Errorf("got %q (hit=%v), want %q", data, ok, html)
	}
	if _, ok := pc.Get(ctx, PageKey(CatalogKey, 4)); ok {
		t.Error("a newer content version should miss")
	}
}

func TestPageCachePurge(t *testing.T) {
	pc := NewPageCache(testValkeyClient(t), time.Minute)
	ctx := context.Background()

	keys := []string{PageKey(HomeKey, 1), PageKey(CatalogKey, 1), PageKey(BudgetKey, 1), PageKey(HomeKey, 2)}
	for _, k := range keys {
		pc.Set(ctx, k, []byte(k))
	}

	removed, err := pc.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if removed < len(keys) {
		t.Errorf("removed: got %d, want at least %d", removed, len(keys))
	}
	for _, k := range keys {
		if _, ok := pc.Get(ctx, k); ok {
			t.Errorf("%s should be gone after Purge", k)
		}
	}
}

func TestNewPageCacheDefaultTTL(t *testing.T) {
	for _, ttl := range []time.Duration{0, -time.Second} {
		if pc := NewPageCache(nil, ttl); pc.ttl != DefaultPageTTL {
			t.Errorf("ttl %v: got %v, want %v", ttl, pc.ttl, DefaultPageTTL)
		}
	}
}

// fakeNotifier hands out a single subscription channel.
type fakeNotifier struct {
	ch           chan struct{}
	unsubscribed chan struct{}
}

func (f *fakeNotifier) Subscribe() (<-chan struct{}, func()) {
	return f.ch, func() { close(f.unsubscribed) }
}

func TestPageCacheWatch(t *testing.T) {
	client := testValkeyClient(t)
	pc := NewPageCache(client, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	n := &fakeNotifier{ch: make(chan struct{}, 1), unsubscribed: make(chan struct{})}
	go pc.Watch(ctx, n)

	pc.Set(ctx, PageKey(HomeKey, 1), []byte("stale"))
	n.ch <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := pc.Get(ctx, PageKey(HomeKey, 1)); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected home page to be invalidated after a content change")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-n.unsubscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not unsubscribe on cancel")
	}
}
