// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "strings"

// PriceOnRequest is the price sentinel meaning "ask the store".
const PriceOnRequest = "Sob Consulta"

// AllCategories is the catalog wildcard that matches every product.
const AllCategories = "Todos"

// ProductCategories is the fixed set of categories a product may belong to.
var ProductCategories = []string{
	"Freios",
	"Suspensão",
	"Motor",
	"Óleos & Fluidos",
	"Elétrica",
	"Arrefecimento",
	"Outros",
}

// Product is one inventory item. Price is free text: either a formatted
// currency string ("R$ 95,00") or PriceOnRequest.
type Product struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Brand       string `json:"brand" yaml:"brand"`
	Price       string `json:"price" yaml:"price"`
	Image       string `json:"image" yaml:"image"`
	Description string `json:"description" yaml:"description"`
	InStock     bool   `json:"inStock" yaml:"inStock"`
}

// IsInquiry reports whether the price must be asked for.
func (p Product) IsInquiry() bool {
	price := strings.TrimSpace(p.Price)
	return price == "" || strings.EqualFold(price, PriceOnRequest)
}

// KnownCategory reports whether the product's category is one of
// ProductCategories.
func (p Product) KnownCategory() bool {
	for _, c := range ProductCategories {
		if p.Category == c {
			return true
		}
	}
	return false
}
