// Package cache provides Valkey (Redis-compatible) client initialization
// and caching of rendered public pages.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

// ConnectValkey returns a client for the Valkey instance at addr that
// holds admin sessions and cached storefront pages. It pings up to
// attempts times with exponential backoff before giving up.
func ConnectValkey(ctx context.Context, addr, password string, attempts int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if attempts < 1 {
		attempts = 1
	}
	try := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1),
		retry.WithCappedDuration(5*time.Second, retry.NewExponential(500*time.Millisecond)))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		try++
		if err := client.Ping(ctx).Err(); err != nil {
			slog.Warn("valkey not ready", "addr", addr, "attempt", try, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s after %d attempt(s): %w", addr, try, err)
	}

	slog.Info("valkey connected", "addr", addr, "attempts", try)
	return client, nil
}
