package catalog

import "gutoautopecas/internal/models"

// SlideImages returns the slide URLs, or just fallback when there are
// none.
func SlideImages(slides []models.HeroSlide, fallback string) []string {
	var out []string
	for _, s := range slides {
		if s.ImageURL != "" {
			out = append(out, s.ImageURL)
		}
	}
	if len(out) == 0 && fallback != "" {
		out = []string{fallback}
	}
	return out
}
