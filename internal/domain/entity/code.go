package entity

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCode deja un código de producto o de ubicación en forma canónica:
// sin espacios alrededor, NFC y en mayúsculas (respeta ñ, ç, acentos).
func NormalizeCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// cases.Caser no es seguro entre goroutines: uno por llamada.
	return cases.Upper(language.Und).String(norm.NFC.String(s))
}
