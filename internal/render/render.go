// Package render substitutes per-recipient variables into template bodies.
// It is pure: no I/O, no shared state, safe for concurrent dispatches.
package render

import (
	"strings"

	"github.com/apexmark/campaign-console/internal/model"
)

// Render replaces every occurrence of {{key}} with vars[key]. Key match is
// literal and case-sensitive. Placeholders without a matching key are left
// verbatim so templates with optional fields render tolerantly.
func Render(body string, vars map[string]string) string {
	out := body
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}

// RecipientVars builds the canonical variable map for a subscriber. The
// {{name}} placeholder falls back to the literal "there" when the subscriber
// has no first name, so "Hi {{name}}" never reads "Hi ".
func RecipientVars(s model.Subscriber) map[string]string {
	name := s.FirstName
	if name == "" {
		name = "there"
	}
	return map[string]string{
		"name":       name,
		"first_name": s.FirstName,
		"last_name":  s.LastName,
		"email":      s.Email,
		"phone":      s.Phone,
	}
}
