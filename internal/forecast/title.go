package forecast

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of every space separated word and
// leaves the remainder of each word as it was ("light rain" -> "Light Rain").
func TitleCase(s string) string {
	if s == "" {
		return s
	}

	// A Caser carries state, so each call gets its own.
	upper := cases.Upper(language.AmericanEnglish)

	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		_, size := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:size]) + w[size:]
	}
	return strings.Join(words, " ")
}
