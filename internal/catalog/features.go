package catalog

import (
	"net/url"
	"strings"
)

// Feature is one of the shop's selling points on the home page.
type Feature struct {
	Glyph       string
	Title       string
	Description string
}

// Features are fixed copy, not editable content.
var Features = []Feature{
	{Glyph: "🛡", Title: "Qualidade Garantida", Description: "Trabalhamos apenas com peças originais e de primeira linha para sua segurança."},
	{Glyph: "👍", Title: "Confiança e Respeito", Description: "Mais de 20 anos de tradição construindo relacionamentos sólidos com nossos clientes."},
	{Glyph: "🚗", Title: "Nacionais e Importados", Description: "O maior estoque de peças para veículos nacionais e importados da região."},
	{Glyph: "🔧", Title: "Especialistas", Description: "Equipe treinada para oferecer a melhor solução técnica para o seu veículo."},
}

// MapsLink returns a Google Maps search URL for a branch address, or ""
// when the address is blank.
func MapsLink(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}
	q := url.Values{"api": {"1"}, "query": {address}}
	return "https://www.google.com/maps/search/?" + q.Encode()
}
