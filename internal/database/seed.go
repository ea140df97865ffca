package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// SeedHeroSlides gives a fresh development database a hero carousel so
// the home page rotates something. A table that already has slides is
// left alone. Site content is not seeded: the content store serves its
// defaults until the first admin save.
func SeedHeroSlides(ctx context.Context, db *sql.DB, imageURLs []string) error {
	var present bool
	if err := db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM hero_carousel)").Scan(&present); err != nil {
		return fmt.Errorf("seed: check hero_carousel: %w", err)
	}
	if present || len(imageURLs) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	for i, url := range imageURLs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO hero_carousel (id, image_url, order_index, active) VALUES ($1, $2, $3, TRUE)",
			uuid.NewString(), url, i)
		if err != nil {
			return fmt.Errorf("seed: slide %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}

	slog.Info("hero carousel seeded", "slides", len(imageURLs))
	return nil
}
