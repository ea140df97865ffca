package models

import "testing"

func TestProductIsInquiry(t *testing.T) {
	tests := []struct {
		price string
		want  bool
	}{
		{"Sob Consulta", true},
		{"sob consulta", true},
		{"  ", true},
		{"", true},
		{"R$ 95,00", false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			if got := (Product{Price: tt.price}).IsInquiry(); got != tt.want {
				t.Errorf("IsInquiry(%q) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestProductKnownCategory(t *testing.T) {
	if !(Product{Category: "Freios"}).KnownCategory() {
		t.Error("Freios should be a known category")
	}
	if (Product{Category: "Pneus"}).KnownCategory() {
		t.Error("Pneus should not be a known category")
	}
}

// TestParseIcon verifies the closed enumeration and its default.
func TestParseIcon(t *testing.T) {
	tests := []struct {
		in   string
		want Icon
	}{
		{"Disc", IconDisc},
		{"wrench", IconWrench},
		{" Zap ", IconZap},
		{"Droplets", IconDroplets},
		{"Battery", IconBattery},
		{"Thermometer", IconThermometer},
		{"Rocket", DefaultIcon},
		{"", DefaultIcon},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseIcon(tt.in); got != tt.want {
				t.Errorf("ParseIcon(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIconGlyphFallsBack(t *testing.T) {
	if Icon("unknown").Glyph() != IconBox.Glyph() {
		t.Error("unknown icon should render the default glyph")
	}
	if IconZap.Glyph() == "" {
		t.Error("known icon should have a glyph")
	}
}
