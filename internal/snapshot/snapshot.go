// Package snapshot keeps an offline copy of the content tree in a local
// SQLite file. The site serves it when PostgreSQL cannot be reached at
// startup.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"gutoautopecas/internal/models"
)

// Key is the single kv entry that holds the serialized tree.
const Key = "site_content"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
)`

// Store is a SQLite-backed snapshot.
type Store struct {
	db *sql.DB
}

// Open creates or opens the snapshot file at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect snapshot: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("snapshot init %q: %w", stmt, err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the stored tree.
func (s *Store) Save(ctx context.Context, tree models.ContentTree) error {
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		Key, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the raw stored tree and whether one exists.
func (s *Store) Load(ctx context.Context) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, Key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot: %w", err)
	}
	return json.RawMessage(value), true, nil
}

// LoadTree loads the stored tree merged over defaults. It returns the
// defaults and false when nothing is stored.
func (s *Store) LoadTree(ctx context.Context, defaults models.ContentTree) (models.ContentTree, bool, error) {
	raw, ok, err := s.Load(ctx)
	if err != nil || !ok {
		return defaults, false, err
	}
	tree, err := Merge(defaults, raw)
	if err != nil {
		return defaults, false, err
	}
	return tree, true, nil
}

// Source is a content tree that announces its changes. content.Store
// satisfies it. Degraded reports that the tree may hold defaults where
// remote data failed to load.
type Source interface {
	Subscribe() (<-chan struct{}, func())
	Tree() models.ContentTree
	Degraded() bool
}

// Follow saves the tree of src after every change until ctx is done, so
// the snapshot tracks admin edits and not only startup fetches. Changes
// while src is degraded are skipped to keep the last good copy.
func (s *Store) Follow(ctx context.Context, src Source) {
	changes, unsubscribe := src.Subscribe()
	defer unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			if src.Degraded() {
				slog.Debug("content degraded, keeping previous snapshot")
				continue
			}
			if err := s.Save(ctx, src.Tree()); err != nil {
				slog.Warn("content snapshot save failed", "error", err)
			}
		}
	}
}

// Clear removes the stored tree.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, Key); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	return nil
}

// Merge overlays a saved tree onto defaults so a snapshot written by an
// older build keeps working:
//   - logo, hero and contact keep default values for keys the saved copy lacks
//   - about images and the three collections are taken from the saved copy
//     only when non-empty
func Merge(defaults models.ContentTree, saved []byte) (models.ContentTree, error) {
	var raw struct {
		Logo       json.RawMessage `json:"logo"`
		Hero       json.RawMessage `json:"hero"`
		About      json.RawMessage `json:"about"`
		Contact    json.RawMessage `json:"contact"`
		Brands     json.RawMessage `json:"brands"`
		Products   json.RawMessage `json:"products"`
		Categories json.RawMessage `json:"categories"`
	}
	if err := json.Unmarshal(saved, &raw); err != nil {
		return defaults, fmt.Errorf("decode snapshot: %w", err)
	}

	tree := defaults.Clone()
	objects := []struct {
		data json.RawMessage
		dst  any
	}{
		{raw.Logo, &tree.Logo},
		{raw.Hero, &tree.Hero},
		{raw.Contact, &tree.Contact},
	}
	for _, o := range objects {
		if len(o.data) == 0 {
			continue
		}
		if err := json.Unmarshal(o.data, o.dst); err != nil {
			return defaults, fmt.Errorf("decode snapshot section: %w", err)
		}
	}

	var about models.About
	if err := unmarshalOptional(raw.About, &about); err != nil {
		return defaults, err
	}
	if len(about.Images) > 0 {
		tree.About.Images = about.Images
	}

	var brands []models.Brand
	if err := unmarshalOptional(raw.Brands, &brands); err != nil {
		return defaults, err
	}
	if len(brands) > 0 {
		tree.Brands = brands
	}

	var products []models.Product
	if err := unmarshalOptional(raw.Products, &products); err != nil {
		return defaults, err
	}
	if len(products) > 0 {
		tree.Products = products
	}

	var categories []models.Category
	if err := unmarshalOptional(raw.Categories, &categories); err != nil {
		return defaults, err
	}
	if len(categories) > 0 {
		for i := range categories {
			categories[i].Icon = categories[i].Icon.Resolve()
		}
		tree.Categories = categories
	}
	return tree, nil
}

func unmarshalOptional(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode snapshot section: %w", err)
	}
	return nil
}
