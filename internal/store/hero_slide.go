package store

import (
	"context"
	"fmt"

	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

// HeroSlideStore reads the hero background carousel.
type HeroSlideStore struct {
	gw gateway.Gateway
}

// NewHeroSlideStore creates a new HeroSlideStore over gw.
func NewHeroSlideStore(gw gateway.Gateway) *HeroSlideStore {
	return &HeroSlideStore{gw: gw}
}

// ListActive returns the active slides in display order.
func (s *HeroSlideStore) ListActive(ctx context.Context) ([]models.HeroSlide, error) {
	rows, err := s.gw.Select(ctx, gateway.TableHeroCarousel, gateway.Query{
		Filter: gateway.Filter{"active": true},
		Order:  []gateway.Order{{Column: "order_index"}},
	})
	if err != nil {
		return nil, fmt.Errorf("list hero slides: %w", err)
	}
	slides := make([]models.HeroSlide, 0, len(rows))
	for _, r := range rows {
		slides = append(slides, models.HeroSlide{
			ID:         r.String("id"),
			ImageURL:   r.String("image_url"),
			OrderIndex: r.Int("order_index"),
			Active:     r.Bool("active"),
		})
	}
	return slides, nil
}
