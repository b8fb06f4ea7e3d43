package location

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Query
	}{
		{"zip", "50401", ZipQuery("50401")},
		{"zip with surrounding whitespace", "  02134 ", ZipQuery("02134")},
		{"zip of zeros is still a zip", "00000", ZipQuery("00000")},
		{"city and state abbreviation", "Baxter, IA", CityStateQuery("Baxter", "IA")},
		{"city and full state name", "Baxter, Iowa", CityStateQuery("Baxter", "Iowa")},
		{"no space after comma", "Des Moines,IA", CityStateQuery("Des Moines", "IA")},
		{"extra whitespace around parts", "  Des Moines  ,   IA  ", CityStateQuery("Des Moines", "IA")},
		{"splits on last comma", "Springfield, Greene County, MO", CityStateQuery("Springfield, Greene County", "MO")},
		{"bare city", "Chicago", CityQuery("Chicago")},
		{"multi word city", "Salt Lake City", CityQuery("Salt Lake City")},
		{"four digits", "5040", CityQuery("5040")},
		{"six digits", "504011", CityQuery("504011")},
		{"zip plus four", "50401-1234", CityQuery("50401-1234")},
		{"single letter state falls through", "Baxter, I", CityQuery("Baxter, I")},
		{"trailing punctuation falls through", "Baxter, IA.", CityQuery("Baxter, IA.")},
		{"digits after comma fall through", "Baxter, 50401", CityQuery("Baxter, 50401")},
		{"state with inner space falls through", "Baxter, New York", CityQuery("Baxter, New York")},
		{"nothing before comma", ", IA", CityQuery(", IA")},
		{"trailing comma", "Baxter,", CityQuery("Baxter,")},
		{"non ascii state falls through", "Zürich, Zürich", CityQuery("Zürich, Zürich")},
		{"non ascii city is fine", "Cañon City, CO", CityStateQuery("Cañon City", "CO")},
		{"line break in city falls through", "Baxter\nCity, IA", CityQuery("Baxter\nCity, IA")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.input))
		})
	}
}

func TestResolveEveryFiveDigitStringIsZip(t *testing.T) {
	for n := 0; n < 100000; n += 7 {
		z := fmt.Sprintf("%05d", n)
		if got := Resolve(z); got != ZipQuery(z) {
			t.Fatalf("Resolve(%q) = %+v, want zip", z, got)
		}
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for _, in := range []string{"50401", "Baxter, IA", "Chicago", "  odd ,, input  "} {
		assert.Equal(t, Resolve(in), Resolve(in))
	}
}

func TestQueryKey(t *testing.T) {
	assert.Equal(t, "zip:50401", ZipQuery("50401").Key())
	assert.Equal(t, "city_state:baxter,ia", CityStateQuery("Baxter", "IA").Key())
	assert.Equal(t, CityStateQuery("BAXTER", "ia").Key(), CityStateQuery("baxter", "IA").Key())
	assert.Equal(t, "city:chicago", CityQuery("Chicago").Key())
}

func TestQueryString(t *testing.T) {
	assert.Equal(t, "ZIP 50401", ZipQuery("50401").String())
	assert.Equal(t, "Baxter, IA", CityStateQuery("Baxter", "IA").String())
	assert.Equal(t, "Chicago", CityQuery("Chicago").String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"zip", "50401", nil},
		{"city state", "Baxter, IA", nil},
		{"padded", "  Chicago  ", nil},
		{"exactly max", strings.Repeat("a", MaxInputLength), nil},
		{"max counts characters not bytes", strings.Repeat("é", MaxInputLength), nil},
		{"max after trimming", " " + strings.Repeat("a", MaxInputLength) + " ", nil},
		{"empty", "", ErrEmpty},
		{"blank", " \t\n ", ErrEmpty},
		{"too long", strings.Repeat("a", MaxInputLength+1), ErrTooLong},
		{"far too long", strings.Repeat("a", 150), ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
