package content

import (
	"gutoautopecas/internal/gateway"
	"gutoautopecas/internal/models"
)

func productFromRow(r gateway.Row) models.Product {
	return models.Product{
		ID:          r.String("id"),
		Name:        r.String("name"),
		Category:    r.String("category"),
		Brand:       r.String("brand"),
		Price:       r.String("price"),
		Image:       r.String("image"),
		Description: r.String("description"),
		InStock:     r.Bool("in_stock"),
	}
}

// ProductRow maps a product onto its table columns. order is the display
// position.
func ProductRow(p models.Product, order int) gateway.Row {
	return gateway.Row{
		"id":            p.ID,
		"name":          p.Name,
		"category":      p.Category,
		"brand":         p.Brand,
		"price":         p.Price,
		"image":         p.Image,
		"description":   p.Description,
		"in_stock":      p.InStock,
		"display_order": order,
	}
}

func categoryFromRow(r gateway.Row) models.Category {
	return models.Category{
		ID:    r.String("id"),
		Name:  r.String("name"),
		Icon:  models.ParseIcon(r.String("icon")),
		Image: r.String("image"),
	}
}

func categoryRow(c models.Category, order int) gateway.Row {
	return gateway.Row{
		"id":            c.ID,
		"name":          c.Name,
		"icon":          string(c.Icon.Resolve()),
		"image":         c.Image,
		"display_order": order,
	}
}

func brandFromRow(r gateway.Row) models.Brand {
	return models.Brand{
		ID:   r.String("id"),
		Name: r.String("name"),
		Logo: r.String("logo"),
	}
}

func brandRow(b models.Brand, order int) gateway.Row {
	return gateway.Row{
		"id":            b.ID,
		"name":          b.Name,
		"logo":          b.Logo,
		"display_order": order,
	}
}
