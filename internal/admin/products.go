package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"gutoautopecas/internal/models"
	"gutoautopecas/internal/store"
)

// ErrProductNotFound is returned for a product ID that is not in the
// inventory.
var ErrProductNotFound = errors.New("admin: product not found")

// NewProductCategory is the category preselected for new products.
const NewProductCategory = "Freios"

// OpenEditor returns the product to edit: a copy of the product with id,
// or a blank in-stock product with a fresh ID when id is empty.
func (s *Surface) OpenEditor(id string) (models.Product, error) {
	if id == "" {
		return models.Product{
			ID:       uuid.NewString(),
			Category: NewProductCategory,
			InStock:  true,
		}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncLocked()
	for _, p := range s.drafts.Products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, fmt.Errorf("%w: %q", ErrProductNotFound, id)
}

// Inventory returns the products whose name, brand or category contains
// query, ignoring case. An empty query returns every product.
func (s *Surface) Inventory(query string) []models.Product {
	s.mu.Lock()
	s.syncLocked()
	products := append([]models.Product(nil), s.drafts.Products...)
	s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return products
	}
	var out []models.Product
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Brand), q) ||
			strings.Contains(strings.ToLower(p.Category), q) {
			out = append(out, p)
		}
	}
	return out
}

// SaveProduct writes p to the remote store, updating the row when the
// product is already in the inventory and inserting it otherwise, then
// mirrors the new list into the content tree. On failure the inventory
// is left as it was.
func (s *Surface) SaveProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	s.mu.Lock()
	s.syncLocked()
	current := append([]models.Product(nil), s.drafts.Products...)
	s.mu.Unlock()

	idx := -1
	for i, existing := range current {
		if existing.ID == p.ID {
			idx = i
			break
		}
	}

	var next []models.Product
	if idx >= 0 {
		err := s.products.Update(ctx, p)
		if errors.Is(err, store.ErrNotFound) {
			// Known locally but never written, e.g. a default product.
			err = s.products.Insert(ctx, p, idx)
		}
		if err != nil {
			return models.Product{}, fmt.Errorf("admin: save product: %w", err)
		}
		next = current
		next[idx] = p
	} else {
		if err := s.products.Insert(ctx, p, len(current)); err != nil {
			return models.Product{}, fmt.Errorf("admin: save product: %w", err)
		}
		next = append(current, p)
	}

	if err := s.mirrorProducts(ctx, next); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// DeleteProduct removes the product with id from the remote store and
// then from the content tree. An id not in the inventory fails with
// ErrProductNotFound and changes nothing.
func (s *Surface) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	s.syncLocked()
	current := append([]models.Product(nil), s.drafts.Products...)
	s.mu.Unlock()

	next := make([]models.Product, 0, len(current))
	for _, p := range current {
		if p.ID != id {
			next = append(next, p)
		}
	}
	if len(next) == len(current) {
		return fmt.Errorf("%w: %q", ErrProductNotFound, id)
	}

	// A product never written remotely has no row to delete.
	if err := s.products.Delete(ctx, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("admin: delete product: %w", err)
	}
	return s.mirrorProducts(ctx, next)
}

func (s *Surface) mirrorProducts(ctx context.Context, products []models.Product) error {
	if _, err := s.site.UpdateSection(ctx, models.SectionProducts, orEmpty(products)); err != nil {
		return fmt.Errorf("admin: update products: %w", err)
	}
	s.Resync()
	return nil
}
