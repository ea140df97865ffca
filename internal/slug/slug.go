// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns brand and category names into stable ASCII IDs.
package slug

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldAccents decomposes, drops combining marks and recomposes, so
// "Suspensão" becomes "Suspensao".
var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Generate lowercases s, folds accents, keeps ASCII letters and digits,
// and joins the words with single hyphens. Whitespace and hyphens
// separate words; every other character is dropped, so "Bateria 2.0"
// becomes "bateria-20".
func Generate(s string) string {
	folded, _, err := transform.String(foldAccents, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	gap := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			gap = false
		case r == '-' || unicode.IsSpace(r):
			gap = true
		}
	}
	return b.String()
}

// Unique returns Generate(s), suffixed with -2, -3, ... until it is not in
// taken, and records the result in taken. Names that slug to nothing fall
// back to fallback.
func Unique(s, fallback string, taken map[string]bool) string {
	base := Generate(s)
	if base == "" {
		base = fallback
	}
	id := base
	for n := 2; taken[id]; n++ {
		id = base + "-" + strconv.Itoa(n)
	}
	taken[id] = true
	return id
}
