// Package whatsapp builds wa.me deep links that open a chat with the shop.
package whatsapp

import (
	"net/url"
	"strings"
	"unicode"
)

// DefaultMessage is prefilled by the floating button on every page.
const DefaultMessage = "Olá, estou no site da Guto Auto Peças e gostaria de um orçamento."

// ProductMessage is prefilled by the catalog "ask about it" action.
func ProductMessage(productName string) string {
	return "Olá, tenho interesse no produto: " + productName
}

// Digits strips everything but ASCII digits from phone.
func Digits(phone string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			return r
		}
		return -1
	}, phone)
}

// Link returns the wa.me URL for phone with message prefilled. An empty
// message yields a bare chat link.
func Link(phone, message string) string {
	u := "https://wa.me/" + Digits(phone)
	if message == "" {
		return u
	}
	return u + "?text=" + escape(message)
}

// escape percent-encodes s with spaces as %20, which WhatsApp expects.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
