// Package present renders weather data for people: icon glyphs, rounded
// readings and the plain-text report printed by the CLI.
package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// DefaultGlyph is shown for icon codes missing from the table.
const DefaultGlyph = "🌤️"

var glyphs = map[string]string{
	"01d": "☀️", "01n": "🌙", "02d": "⛅", "02n": "☁️",
	"03d": "☁️", "03n": "☁️", "04d": "☁️", "04n": "☁️",
	"09d": "🌧️", "09n": "🌧️", "10d": "🌦️", "10n": "🌧️",
	"11d": "⛈️", "11n": "⛈️", "13d": "❄️", "13n": "❄️",
	"50d": "🌫️", "50n": "🌫️",
}

// Glyph maps an OpenWeatherMap icon code to an emoji.
func Glyph(icon string) string {
	if g, ok := glyphs[icon]; ok {
		return g
	}
	return DefaultGlyph
}

// Temperature formats a Fahrenheit reading as "64°F".
func Temperature(f float64) string {
	return fmt.Sprintf("%d°F", forecast.Round(f))
}

// Speed formats a wind speed as "9 mph".
func Speed(mph float64) string {
	return fmt.Sprintf("%d mph", forecast.Round(mph))
}

// WriteReport prints current conditions followed by the daily forecast.
func WriteReport(w io.Writer, r weather.Report) error {
	cur := r.Current

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s %s\n", cur.DisplayName, Glyph(cur.Icon), cur.Description)
	if !cur.ObservedAt.IsZero() {
		fmt.Fprintf(&b, "%s\n", cur.ObservedAt.Format("Monday, January 2, 2006"))
	}

	details := uitable.New()
	details.AddRow("Temperature", Temperature(cur.Temperature))
	details.AddRow("Feels like", Temperature(cur.FeelsLike))
	details.AddRow("Humidity", fmt.Sprintf("%d%%", cur.Humidity))
	details.AddRow("Wind", Speed(cur.WindSpeed))
	b.WriteString(details.String())
	b.WriteString("\n")

	if len(r.Daily) > 0 {
		b.WriteString("\n5-Day Forecast\n")
		days := uitable.New()
		for _, d := range r.Daily {
			days.AddRow(d.Day, d.Date, Glyph(d.Icon), d.Condition, fmt.Sprintf("%d°", d.High), fmt.Sprintf("%d°", d.Low))
		}
		b.WriteString(days.String())
		b.WriteString("\n")
	}

	if r.Radar != nil {
		fmt.Fprintf(&b, "\nRadar %s\n", r.Radar.Frame.TileURL)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
