// Package catalog implements the read-side logic of the public pages:
// catalog filtering, the navbar quick search with match highlighting, and
// image carousels.
package catalog

import (
	"strings"

	"golang.org/x/text/cases"

	"gutoautopecas/internal/models"
)

// QuickSearchLimit caps the quick search result list.
const QuickSearchLimit = 5

// fold lowercases s with full Unicode case folding, so "SUSPENSÃO" and
// "suspensão" compare equal.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(fold(haystack), needle)
}

// Filter returns the products in category (AllCategories matches any)
// whose name, brand or description contains query, ignoring case. An empty
// query matches everything. The input order is kept.
func Filter(products []models.Product, category, query string) []models.Product {
	q := fold(strings.TrimSpace(query))
	var out []models.Product
	for _, p := range products {
		if category != "" && category != models.AllCategories && p.Category != category {
			continue
		}
		if q != "" && !containsFold(p.Name, q) && !containsFold(p.Brand, q) && !containsFold(p.Description, q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// QuickSearch returns up to QuickSearchLimit products whose name, brand,
// category or description contains query. A blank query returns nothing.
func QuickSearch(products []models.Product, query string) []models.Product {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []models.Product
	for _, p := range products {
		if containsFold(p.Name, q) || containsFold(p.Brand, q) ||
			containsFold(p.Category, q) || containsFold(p.Description, q) {
			out = append(out, p)
			if len(out) == QuickSearchLimit {
				break
			}
		}
	}
	return out
}

// Categories returns the catalog tabs: the wildcard followed by the fixed
// product categories.
func Categories() []string {
	return append([]string{models.AllCategories}, models.ProductCategories...)
}
