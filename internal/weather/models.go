package weather

import (
	"encoding/json"
	"time"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/location"
)

// RadarZoom is the map zoom level the radar overlay is centred at.
const RadarZoom = 8

// CurrentConditions is the normalized "current weather" reading for a location.
type CurrentConditions struct {
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	DisplayName string    `json:"displayName"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	Temperature float64   `json:"temperatureF"`
	FeelsLike   float64   `json:"feelsLikeF"`
	Humidity    int       `json:"humidityPercent"`
	WindSpeed   float64   `json:"windSpeedMph"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	ObservedAt  time.Time `json:"observedAt"`

	// Raw is the upstream payload exactly as received.
	Raw json.RawMessage `json:"-"`
}

// DisplayName drops the country for US results and appends it otherwise.
func DisplayName(name, country string) string {
	if country == "" || country == "US" {
		return name
	}
	return name + ", " + country
}

// ForecastSeries is the fine-grained (3-hourly) forecast returned upstream.
type ForecastSeries struct {
	City    string `json:"city"`
	Country string `json:"country"`

	// TimezoneOffset is the location's shift from UTC in seconds, when known.
	TimezoneOffset *int `json:"timezoneOffset,omitempty"`

	Entries []forecast.Entry `json:"entries"`

	// Skipped counts upstream samples dropped for missing fields.
	Skipped int `json:"skipped,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// RadarFrame is one precipitation radar snapshot.
type RadarFrame struct {
	Time    time.Time `json:"time"`
	Path    string    `json:"path"`
	TileURL string    `json:"tileUrl"` // {z}/{x}/{y} template
}

// RadarOverlay positions the latest radar frame over a location.
type RadarOverlay struct {
	Lat   float64    `json:"lat"`
	Lon   float64    `json:"lon"`
	Zoom  int        `json:"zoom"`
	Frame RadarFrame `json:"frame"`
}

// Report is everything shown for a single location lookup.
type Report struct {
	Query     location.Query          `json:"query"`
	Current   CurrentConditions       `json:"current"`
	Daily     []forecast.DailySummary `json:"daily"`
	Radar     *RadarOverlay           `json:"radar,omitempty"`
	FetchedAt time.Time               `json:"fetchedAt"` // always UTC
}
