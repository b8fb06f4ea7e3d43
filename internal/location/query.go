package location

import "strings"

// Kind identifies which shape of upstream query a location resolved to.
type Kind string

const (
	KindZip       Kind = "zip"
	KindCityState Kind = "city_state"
	KindCity      Kind = "city"
)

// Query is the structured form of a free-text location.
// Exactly one of the variants is populated, as indicated by Kind:
// Zip uses Code, CityState uses City and State, City uses City only.
type Query struct {
	Kind  Kind   `json:"kind"`
	Code  string `json:"code,omitempty"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
}

func ZipQuery(code string) Query {
	return Query{Kind: KindZip, Code: code}
}

func CityStateQuery(city, state string) Query {
	return Query{Kind: KindCityState, City: city, State: state}
}

func CityQuery(city string) Query {
	return Query{Kind: KindCity, City: city}
}

// Key returns a canonical, case-insensitive key for caching lookups of this query.
func (q Query) Key() string {
	switch q.Kind {
	case KindZip:
		return string(KindZip) + ":" + q.Code
	case KindCityState:
		return string(KindCityState) + ":" + strings.ToLower(q.City) + "," + strings.ToLower(q.State)
	default:
		return string(KindCity) + ":" + strings.ToLower(q.City)
	}
}

func (q Query) String() string {
	switch q.Kind {
	case KindZip:
		return "ZIP " + q.Code
	case KindCityState:
		return q.City + ", " + q.State
	default:
		return q.City
	}
}
