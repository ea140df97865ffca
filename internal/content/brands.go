package content

import (
	"gutoautopecas/internal/models"
	"gutoautopecas/internal/slug"
)

// AssignBrandIDs gives every brand without an ID one derived from its name,
// unique within the list. Existing IDs are kept. The input is not modified.
func AssignBrandIDs(brands []models.Brand) []models.Brand {
	out := append([]models.Brand(nil), brands...)
	taken := make(map[string]bool, len(out))
	for _, b := range out {
		if b.ID != "" {
			taken[b.ID] = true
		}
	}
	for i := range out {
		if out[i].ID == "" {
			out[i].ID = slug.Unique(out[i].Name, "marca", taken)
		}
	}
	return out
}
