package slug

import "testing"

// TestGenerate covers the brand and category names the site actually
// shows, plus punctuation and whitespace edge cases.
func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		// --- Brand names ---
		{"single word", "Volkswagen", "volkswagen"},
		{"hyphenated brand", "Mercedes-Benz", "mercedes-benz"},
		{"all caps", "BMW", "bmw"},
		{"diaeresis folded", "Citroën", "citroen"},
		{"slash between makers", "Cobreq / Bosch", "cobreq-bosch"},

		// --- Category names ---
		{"cedilla and tilde", "Suspensão", "suspensao"},
		{"acute accent", "Elétrica", "eletrica"},
		{"ampersand dropped", "Óleos & Fluidos", "oleos-fluidos"},

		// --- Punctuation ---
		{"parentheses", "Amortecedor Dianteiro (Par)", "amortecedor-dianteiro-par"},
		{"plus sign", "Kit Correia Dentada + Tensor", "kit-correia-dentada-tensor"},
		{"version number", "Bateria 60Ah 2.0", "bateria-60ah-20"},

		// --- Whitespace ---
		{"leading and trailing spaces", "  Ford  ", "ford"},
		{"consecutive spaces", "Jogo   de Velas", "jogo-de-velas"},
		{"tab", "Kia\tMotors", "kia-motors"},
		{"newline", "Kia\nMotors", "kia-motors"},

		// --- Hyphens ---
		{"leading hyphens", "---Fiat", "fiat"},
		{"repeated hyphens", "Fiat---Uno", "fiat-uno"},
		{"hyphens and spaces mixed", "  --Fiat -- Uno--  ", "fiat-uno"},

		// --- Edge cases ---
		{"empty", "", ""},
		{"only spaces", "    ", ""},
		{"only symbols", "!@#$%^&*()", ""},
		{"single digit", "5", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate(tt.input)
			if got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestGenerate_Idempotent verifies that a slug maps to itself.
func TestGenerate_Idempotent(t *testing.T) {
	for _, s := range []string{"volkswagen", "mercedes-benz", "oleos-fluidos", "5"} {
		t.Run(s, func(t *testing.T) {
			if got := Generate(s); got != s {
				t.Errorf("Generate(%q) = %q, want idempotent result %q", s, got, s)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	taken := map[string]bool{}

	steps := []struct {
		input string
		want  string
	}{
		{"Ford", "ford"},
		{"ford", "ford-2"},
		{"FORD", "ford-3"},
		{"Fiat", "fiat"},
		{"???", "brand"},
		{"!!!", "brand-2"},
	}
	for _, s := range steps {
		if got := Unique(s.input, "brand", taken); got != s.want {
			t.Errorf("Unique(%q) = %q, want %q", s.input, got, s.want)
		}
	}
	if len(taken) != len(steps) {
		t.Errorf("taken has %d entries, want %d", len(taken), len(steps))
	}
}
