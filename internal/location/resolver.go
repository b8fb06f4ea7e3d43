package location

import (
	"strings"
	"unicode"
)

// MaxInputLength is the longest location string callers may pass to Resolve.
const MaxInputLength = 100

// Resolve classifies a free-text location into a ZIP, city+state or bare city query.
//
// The checks run in a fixed order: five ASCII digits win over everything else,
// then "<text>, <letters>" is split on its last comma, and anything left over is
// treated as a city name. Resolve never fails; callers are expected to reject
// empty or oversized input before calling it.
func Resolve(input string) Query {
	s := strings.TrimSpace(input)

	if isZip(s) {
		return ZipQuery(s)
	}
	if city, state, ok := splitCityState(s); ok {
		return CityStateQuery(city, state)
	}
	return CityQuery(s)
}

func isZip(s string) bool {
	if len(s) != 5 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitCityState matches "<free text>,<optional whitespace><2+ letters>".
func splitCityState(s string) (city, state string, ok bool) {
	idx := strings.LastIndexByte(s, ',')
	if idx <= 0 {
		return "", "", false
	}

	head := s[:idx]
	if strings.ContainsAny(head, "\n\r\u2028\u2029") {
		return "", "", false
	}

	tail := strings.TrimLeftFunc(s[idx+1:], unicode.IsSpace)
	if len(tail) < 2 || !isASCIIAlpha(tail) {
		return "", "", false
	}

	city = strings.TrimSpace(head)
	if city == "" {
		return "", "", false
	}
	return city, tail, true
}

func isASCIIAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}
