package gateway

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
)

// WithRetry runs op up to maxAttempts times, waiting baseDelay*n after the
// n-th failed attempt. Only connection errors are retried; anything else
// is returned at once. The last error is returned when attempts run out.
func WithRetry(ctx context.Context, maxAttempts int, baseDelay time.Duration, op func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	attempt := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		return baseDelay * time.Duration(attempt), false
	})
	backoff := retry.WithMaxRetries(uint64(maxAttempts-1), linear)

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsConnection(err) {
			return err
		}
		slog.Warn("remote store attempt failed",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"error", err,
		)
		return retry.RetryableError(err)
	})
}

// Retrying wraps a Gateway so every call goes through WithRetry.
type Retrying struct {
	next      Gateway
	attempts  int
	baseDelay time.Duration
}

// NewRetrying returns a retrying decorator around gw.
func NewRetrying(gw Gateway, attempts int, baseDelay time.Duration) *Retrying {
	return &Retrying{next: gw, attempts: attempts, baseDelay: baseDelay}
}

func (r *Retrying) do(ctx context.Context, op func(ctx context.Context) error) error {
	return WithRetry(ctx, r.attempts, r.baseDelay, op)
}

func (r *Retrying) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	var rows []Row
	err := r.do(ctx, func(ctx context.Context) error {
		var err error
		rows, err = r.next.Select(ctx, table, q)
		return err
	})
	return rows, err
}

// Insert retries as an upsert on the table's primary key. A connection
// lost after COMMIT would otherwise turn the retry into a duplicate key
// error for a row that was written. Rows carry caller-generated IDs, so
// the upsert only ever meets its own earlier attempt.
func (r *Retrying) Insert(ctx context.Context, table string, rows ...Row) error {
	var key string
	if t, err := LookupTable(table); err == nil {
		key = t.Key
	}
	attempt := 0
	return r.do(ctx, func(ctx context.Context) error {
		attempt++
		if attempt == 1 || key == "" {
			return r.next.Insert(ctx, table, rows...)
		}
		return r.next.Upsert(ctx, table, key, rows...)
	})
}

func (r *Retrying) Update(ctx context.Context, table string, patch Row, match Filter) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.next.Update(ctx, table, patch, match)
	})
}

func (r *Retrying) Upsert(ctx context.Context, table, conflictKey string, rows ...Row) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.next.Upsert(ctx, table, conflictKey, rows...)
	})
}

func (r *Retrying) Delete(ctx context.Context, table string, match Filter) error {
	return r.do(ctx, func(ctx context.Context) error {
		return r.next.Delete(ctx, table, match)
	})
}
