// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

// Category is a home page category card. Order in the tree is display order.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Icon  Icon   `json:"icon" yaml:"icon"`
	Image string `json:"image" yaml:"image"`
}

// Brand is a vehicle maker shown in the brands strip. ID gives the row a
// stable key so saves can upsert instead of delete-and-reinsert.
type Brand struct {
	ID   string `json:"id,omitempty" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Logo string `json:"logo" yaml:"logo"`
}
