// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Lead is a contact form submission. Leads live only in the database and
// are not part of the content tree.
type Lead struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// HeroSlide is one background image of the hero carousel.
type HeroSlide struct {
	ID         string `json:"id"`
	ImageURL   string `json:"image_url"`
	OrderIndex int    `json:"order_index"`
	Active     bool   `json:"active"`
}
