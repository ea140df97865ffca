package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gutoautopecas/internal/content"
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// ProductStore writes single product rows for the admin product editor.
// Reads go through the content tree.
type ProductStore struct {
	gw gateway.Gateway
}

// NewProductStore creates a new ProductStore over gw.
func NewProductStore(gw gateway.Gateway) *ProductStore {
	return &ProductStore{gw: gw}
}

// Insert adds p at display position order.
func (s *ProductStore) Insert(ctx context.Context, p models.Product, order int) error {
	row := content.ProductRow(p, order)
	row["created_at"] = time.Now().UTC()
	if err := s.gw.Insert(ctx, gateway.TableProducts, row); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Update overwrites every field of the row with p's ID. The display
// position is left alone. Returns ErrNotFound when no row has that ID.
func (s *ProductStore) Update(ctx context.Context, p models.Product) error {
	patch := content.ProductRow(p, 0)
	delete(patch, "id")
	delete(patch, "display_order")
	err := s.gw.Update(ctx, gateway.TableProducts, patch, gateway.Filter{"id": p.ID})
	if errors.Is(err, gateway.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes the row with id. Returns ErrNotFound when none matched.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	err := s.gw.Delete(ctx, gateway.TableProducts, gateway.Filter{"id": id})
	if errors.Is(err, gateway.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}
