package handlers

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	"gutoautopecas/internal/models"
	"gutoautopecas/internal/whatsapp"
)

// Validation limits for lead form fields.
const (
	maxNameLen    = 120
	maxEmailLen   = 254
	maxCarInfoLen = 200
	maxMessageLen = 5_000
	maxPhoneLen   = 11
)

// leadForm is a submitted contact or budget form.
type leadForm struct {
	Name    string
	Phone   string
	Email   string
	CarInfo string
	Message string
}

// readLeadForm reads and trims the form fields. The phone is reformatted
// with the same mask the browser applies.
func readLeadForm(r *http.Request) leadForm {
	return leadForm{
		Name:    strings.TrimSpace(r.FormValue("name")),
		Phone:   FormatPhone(r.FormValue("phone")),
		Email:   strings.TrimSpace(r.FormValue("email")),
		CarInfo: strings.TrimSpace(r.FormValue("car_info")),
		Message: strings.TrimSpace(r.FormValue("message")),
	}
}

// validateLead checks the form and returns the first error found.
func validateLead(f leadForm) string {
	if f.Name == "" {
		return "Informe seu nome."
	}
	if utf8.RuneCountInString(f.Name) > maxNameLen {
		return "Nome muito longo."
	}
	if len(whatsapp.Digits(f.Phone)) < 10 {
		return "Informe um telefone com DDD."
	}
	if f.Email == "" {
		return "Informe seu e-mail."
	}
	if len(f.Email) > maxEmailLen {
		return "E-mail muito longo."
	}
	if addr, err := mail.ParseAddress(f.Email); err != nil || addr.Address != f.Email {
		return "E-mail inválido."
	}
	if utf8.RuneCountInString(f.CarInfo) > maxCarInfoLen {
		return "Descrição do veículo muito longa."
	}
	if f.Message == "" {
		return "Escreva sua mensagem."
	}
	if utf8.RuneCountInString(f.Message) > maxMessageLen {
		return "Mensagem muito longa (máximo 5.000 caracteres)."
	}
	return ""
}

// lead converts the form into a lead. Vehicle details from the budget
// form are prepended to the message.
func (f leadForm) lead() *models.Lead {
	msg := f.Message
	if f.CarInfo != "" {
		msg = "Veículo: " + f.CarInfo + "\n\n" + msg
	}
	return &models.Lead{Name: f.Name, Phone: f.Phone, Email: f.Email, Message: msg}
}

// FormatPhone masks up to 11 digits as "(21) 99999-8888". Partial input
// is masked as far as it goes.
func FormatPhone(s string) string {
	d := whatsapp.Digits(s)
	if len(d) > maxPhoneLen {
		d = d[:maxPhoneLen]
	}
	if len(d) <= 2 {
		return d
	}
	area, rest := d[:2], d[2:]
	if len(rest) > 4 {
		rest = rest[:len(rest)-4] + "-" + rest[len(rest)-4:]
	}
	return "(" + area + ") " + rest
}
