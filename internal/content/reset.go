package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// ResetAll restores the defaults in the remote store and reloads the tree.
// Nothing is transactional, so the steps run in the order that leaves the
// site most usable if one fails: object sections first, then the default
// collection rows, and only then the deletion of rows the defaults do not
// contain. The first error stops the sequence; the tree is refetched
// either way. Background writes still in flight are waited for first so
// none lands on top of the defaults.
func (s *Store) ResetAll(ctx context.Context) error {
	if err := s.Drain(ctx); err != nil {
		return fmt.Errorf("reset: waiting for pending writes: %w", err)
	}
	err := s.restoreDefaults(ctx)
	if err != nil {
		slog.Error("reset to defaults failed", "error", err)
	}
	if ferr := s.FetchAll(ctx); ferr != nil && err == nil {
		err = ferr
	}
	if err == nil {
		slog.Info("content reset to defaults")
	}
	return err
}

func (s *Store) restoreDefaults(ctx context.Context) error {
	d := s.defaults.Clone()

	objects := make([]gateway.Row, 0, len(models.ObjectSections))
	for _, sec := range models.ObjectSections {
		objects = append(objects, sectionRow(sec, sectionValue(d, sec)))
	}
	if err := s.gw.Upsert(ctx, gateway.TableSiteContent, "section", objects...); err != nil {
		return fmt.Errorf("restore sections: %w", err)
	}

	products := make([]gateway.Row, len(d.Products))
	for i, p := range d.Products {
		products[i] = ProductRow(p, i)
	}
	categories := make([]gateway.Row, len(d.Categories))
	for i, c := range d.Categories {
		categories[i] = categoryRow(c, i)
	}
	brands := make([]gateway.Row, len(d.Brands))
	for i, b := range d.Brands {
		brands[i] = brandRow(b, i)
	}

	collections := []struct {
		table string
		rows  []gateway.Row
	}{
		{gateway.TableProducts, products},
		{gateway.TableCategories, categories},
		{gateway.TableBrands, brands},
	}
	for _, c := range collections {
		if len(c.rows) == 0 {
			continue
		}
		if err := s.gw.Upsert(ctx, c.table, "id", c.rows...); err != nil {
			return fmt.Errorf("restore %s: %w", c.table, err)
		}
	}
	for _, c := range collections {
		if err := s.deleteExcept(ctx, c.table, c.rows); err != nil {
			return fmt.Errorf("prune %s: %w", c.table, err)
		}
	}
	return nil
}

// deleteExcept removes every row of table whose id is not in keep.
func (s *Store) deleteExcept(ctx context.Context, table string, keep []gateway.Row) error {
	ids := make(map[string]bool, len(keep))
	for _, r := range keep {
		ids[r.String("id")] = true
	}
	existing, err := s.gw.Select(ctx, table, gateway.Query{})
	if err != nil {
		return err
	}
	var removed []string
	for _, r := range existing {
		if id := r.String("id"); !ids[id] {
			removed = append(removed, id)
		}
	}
	if len(removed) == 0 {
		return nil
	}
	if err := s.gw.Delete(ctx, table, gateway.Filter{"id": removed}); err != nil && !errors.Is(err, gateway.ErrNoRows) {
		return err
	}
	return nil
}
