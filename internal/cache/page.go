// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go caches rendered storefront pages in Valkey. Keys carry the
// content version they were rendered from, so a page built from an older
// tree is never served after an admin save. Purge reclaims the old
// versions eagerly instead of waiting for their TTL.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pagePrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute

	// purgeBatch is how many keys are unlinked per round trip.
	purgeBatch = 100
)

// Names of the cacheable storefront pages.
const (
	HomeKey    = "home"
	CatalogKey = "catalogo"
	BudgetKey  = "orcamento"
)

// PageKey names the cache entry for page rendered at content version.
func PageKey(page string, version uint64) string {
	return page + "@" + strconv.FormatUint(version, 10)
}

// Notifier announces content changes. content.Store satisfies it.
type Notifier interface {
	Subscribe() (<-chan struct{}, func())
}

// PageCache holds rendered HTML keyed by PageKey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache returns a cache on client. A zero ttl means DefaultPageTTL.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get returns the cached page for key. Valkey errors count as a miss so
// the storefront keeps rendering when the cache is down.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	html, err := pc.client.Get(ctx, pagePrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return nil, false
	case err != nil:
		slog.Warn("page cache read failed", "key", key, "error", err)
		return nil, false
	}
	return html, true
}

// Set stores html under key for the cache TTL.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte) {
	if err := pc.client.Set(ctx, pagePrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache write failed", "key", key, "error", err)
	}
}

// Purge unlinks every cached page and reports how many were removed.
func (pc *PageCache) Purge(ctx context.Context) (int, error) {
	iter := pc.client.Scan(ctx, 0, pagePrefix+"*", purgeBatch).Iterator()
	batch := make([]string, 0, purgeBatch)
	removed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := pc.client.Unlink(ctx, batch...).Result()
		removed += int(n)
		batch = batch[:0]
		return err
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == purgeBatch {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}

// Watch purges the cache after every change announced by n until ctx is
// done or n closes the subscription.
func (pc *PageCache) Watch(ctx context.Context, n Notifier) {
	changes, unsubscribe := n.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			removed, err := pc.Purge(ctx)
			if err != nil {
				slog.Warn("page cache purge failed", "removed", removed, "error", err)
				continue
			}
			slog.Debug("page cache purged", "removed", removed)
		}
	}
}
