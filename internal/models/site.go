// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the content tree shared by every public view and the admin panel.
package models

import (
	"encoding/json"
	"time"
)

// Section names a slice of the content tree that is persisted on its own.
type Section string

const (
	SectionLogo       Section = "logo"
	SectionHero       Section = "hero"
	SectionAbout      Section = "about"
	SectionContact    Section = "contact"
	SectionBrands     Section = "brands"
	SectionProducts   Section = "products"
	SectionCategories Section = "categories"
)

// Sections lists every section in the order the admin panel saves them.
var Sections = []Section{
	SectionHero,
	SectionContact,
	SectionLogo,
	SectionBrands,
	SectionAbout,
	SectionProducts,
	SectionCategories,
}

// ObjectSections are stored as one site_content row each.
var ObjectSections = []Section{SectionLogo, SectionHero, SectionAbout, SectionContact}

// IsObject reports whether the section is a single object (shallow-merged on
// update) rather than an ordered collection (replaced wholesale).
func (s Section) IsObject() bool {
	switch s {
	case SectionLogo, SectionHero, SectionAbout, SectionContact:
		return true
	}
	return false
}

// Valid reports whether s is a known section name.
func (s Section) Valid() bool {
	for _, known := range Sections {
		if s == known {
			return true
		}
	}
	return false
}

// SectionRow is one row of the site_content table: the JSON payload of an
// object section keyed by its name.
type SectionRow struct {
	Section   Section         `json:"section"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Logo holds the site logo. An empty URL renders the text logo.
type Logo struct {
	URL string `json:"url" yaml:"url"`
}

// Hero is the landing banner copy.
type Hero struct {
	Badge      string `json:"badge" yaml:"badge"`
	TitleLine1 string `json:"titleLine1" yaml:"titleLine1"`
	TitleLine2 string `json:"titleLine2" yaml:"titleLine2"`
	Subtitle   string `json:"subtitle" yaml:"subtitle"`
	BgImage    string `json:"bgImage" yaml:"bgImage"`
}

// AboutFallbackImage is shown when the gallery has no images. It is never
// persisted.
const AboutFallbackImage = "https://images.unsplash.com/photo-1599256621730-d3dc05368a7f?q=80&w=1000&auto=format&fit=crop"

// About holds the ordered gallery of the about section.
type About struct {
	Images []string `json:"images" yaml:"images"`
}

// DisplayImages returns the gallery to render, substituting the fallback
// image when the stored gallery is empty.
func (a About) DisplayImages() []string {
	if len(a.Images) == 0 {
		return []string{AboutFallbackImage}
	}
	return a.Images
}

// Contact holds phone numbers, addresses and top bar copy.
type Contact struct {
	Whatsapp      string `json:"whatsapp" yaml:"whatsapp"`
	PhoneNacional string `json:"phoneNacional" yaml:"phoneNacional"`
	PhoneImports  string `json:"phoneImports" yaml:"phoneImports"`
	Address1      string `json:"address1" yaml:"address1"`
	Address2      string `json:"address2" yaml:"address2"`
	OpeningHours  string `json:"openingHours" yaml:"openingHours"`
	TopBarInfo    string `json:"topBarInfo" yaml:"topBarInfo"`
}

// ContentTree is the merged view of all editable content. It is not stored
// as one unit: each section is fetched and persisted independently.
type ContentTree struct {
	Logo       Logo       `json:"logo" yaml:"logo"`
	Hero       Hero       `json:"hero" yaml:"hero"`
	About      About      `json:"about" yaml:"about"`
	Contact    Contact    `json:"contact" yaml:"contact"`
	Brands     []Brand    `json:"brands" yaml:"brands"`
	Products   []Product  `json:"products" yaml:"products"`
	Categories []Category `json:"categories" yaml:"categories"`
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (t ContentTree) Clone() ContentTree {
	c := t
	c.About.Images = append([]string(nil), t.About.Images...)
	c.Brands = append([]Brand(nil), t.Brands...)
	c.Products = append([]Product(nil), t.Products...)
	c.Categories = append([]Category(nil), t.Categories...)
	return c
}

// ProductByID returns the product with the given ID and whether it exists.
func (t ContentTree) ProductByID(id string) (Product, bool) {
	for _, p := range t.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}
