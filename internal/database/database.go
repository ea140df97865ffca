// Package database opens the PostgreSQL pool behind the SQL gateway and
// applies the embedded goose migrations that create the site tables.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// pingTimeout bounds a single startup ping.
const pingTimeout = 3 * time.Second

// startupBackoff is the wait between startup pings. Tests shorten it.
var startupBackoff = func() retry.Backoff {
	return retry.WithCappedDuration(5*time.Second, retry.NewExponential(500*time.Millisecond))
}

// Connect opens the pgx pool and pings PostgreSQL until it answers,
// making at most attempts pings. The container usually comes up after
// the app in compose, so early pings are expected to fail.
func Connect(ctx context.Context, dsn string, attempts int) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("database open: %w", err)
	}

	// One shop, one process: the gateway rarely has more than a few
	// queries in flight.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)
	db.SetConnMaxIdleTime(10 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	if attempts < 1 {
		attempts = 1
	}
	try := 0
	backoff := retry.WithMaxRetries(uint64(attempts-1), startupBackoff())
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		try++
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			slog.Warn("postgres not ready", "attempt", try, "max_attempts", attempts, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping after %d attempt(s): %w", try, err)
	}

	slog.Info("postgres connected", "attempts", try)
	return db, nil
}

// Migrate applies every pending migration in migrations/ and logs the
// resulting schema version.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, res := range results {
		slog.Info("migration applied", "version", res.Source.Version, "duration", res.Duration.String())
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	slog.Info("schema ready", "version", version, "applied", len(results))
	return nil
}
