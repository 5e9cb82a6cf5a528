package intake

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CanonicalLabel collapses whitespace and title-cases free-form category
// values such as animal and food types, so "street  DOG" and "Street dog"
// group together.
func CanonicalLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Casers keep state and must not be shared between goroutines.
	return cases.Title(language.English).String(s)
}
