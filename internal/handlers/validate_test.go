package handlers

import (
	"strings"
	"testing"
)

func TestValidateLead(t *testing.T) {
	valid := leadForm{Name: "Ana", Phone: "(21) 99999-8888", Email: "ana@example.com", Message: "Preciso de pastilhas"}

	tests := []struct {
		name      string
		mutate    func(f *leadForm)
		wantError bool
	}{
		{"valid", func(f *leadForm) {}, false},
		{"empty name", func(f *leadForm) { f.Name = "" }, true},
		{"name too long", func(f *leadForm) { f.Name = strings.Repeat("a", 121) }, true},
		{"short phone", func(f *leadForm) { f.Phone = "(21) 9999" }, true},
		{"empty email", func(f *leadForm) { f.Email = "" }, true},
		{"bad email", func(f *leadForm) { f.Email = "ana at example" }, true},
		{"named email", func(f *leadForm) { f.Email = "Ana <ana@example.com>" }, true},
		{"empty message", func(f *leadForm) { f.Message = "" }, true},
		{"message too long", func(f *leadForm) { f.Message = strings.Repeat("a", 5_001) }, true},
		{"car info too long", func(f *leadForm) { f.CarInfo = strings.Repeat("a", 201) }, true},
		{"car info allowed", func(f *leadForm) { f.CarInfo = "Gol 1.6 2015" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			result := validateLead(f)
			if tt.wantError && result == "" {
				t.Error("expected an error, got none")
			}
			if !tt.wantError && result != "" {
				t.Errorf("unexpected error: %s", result)
			}
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"21999998888", "(21) 99999-8888"},
		{"2133503305", "(21) 3350-3305"},
		{"(21) 99999-8888", "(21) 99999-8888"},
		{"5521999998888", "(55) 21999-9988"},
		{"21", "21"},
		{"2199", "(21) 99"},
		{"2199999", "(21) 9-9999"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := FormatPhone(tt.in); got != tt.want {
				t.Errorf("FormatPhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLeadFormAppendsCarInfo(t *testing.T) {
	f := leadForm{Name: "Ana", CarInfo: "HB20 2019", Message: "Correia dentada"}
	if got := f.lead().Message; got != "Veículo: HB20 2019\n\nCorreia dentada" {
		t.Errorf("message = %q", got)
	}
	f.CarInfo = ""
	if got := f.lead().Message; got != "Correia dentada" {
		t.Errorf("message = %q", got)
	}
}
