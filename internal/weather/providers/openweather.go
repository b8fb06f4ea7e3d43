package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/weather"
)

const (
	// DefaultOpenWeatherURL is the OpenWeatherMap 2.5 API root.
	DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5"

	// Every lookup is scoped to the United States.
	countryCode = "US"
	units       = "imperial"
)

// OpenWeatherProvider serves current conditions and forecasts from OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// OpenWeatherOption customizes an OpenWeatherProvider.
type OpenWeatherOption func(*OpenWeatherProvider)

func WithBaseURL(u string) OpenWeatherOption {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithLimiter(l *rate.Limiter) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.httpCfg.Limiter = l }
}

func WithBackoff(b BackoffConfig) OpenWeatherOption {
	return func(p *OpenWeatherProvider) { p.httpCfg.Backoff = b }
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...OpenWeatherOption) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultOpenWeatherURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newBreaker("openweather"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// queryValues maps a resolved location onto OpenWeatherMap's zip / q parameters.
func (p *OpenWeatherProvider) queryValues(q location.Query) url.Values {
	values := url.Values{}
	switch q.Kind {
	case location.KindZip:
		values.Set("zip", q.Code+","+countryCode)
	case location.KindCityState:
		values.Set("q", q.City+","+q.State+","+countryCode)
	default:
		values.Set("q", q.City+","+countryCode)
	}
	values.Set("appid", p.apiKey)
	values.Set("units", units)
	return values
}

func (p *OpenWeatherProvider) get(ctx context.Context, endpoint string, q location.Query) ([]byte, error) {
	if p.apiKey == "" {
		return nil, weather.ErrNotConfigured
	}

	buildRequest := func(ctx context.Context) (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", p.baseURL, endpoint, p.queryValues(q).Encode())
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) && (se.Code == http.StatusNotFound || se.Code == http.StatusBadRequest) {
			return nil, fmt.Errorf("%w: %w", weather.ErrLocationNotFound, err)
		}
		return nil, err
	}
	return readBody(resp)
}

type owmCondition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentPayload struct {
	Name  string `json:"name"`
	Dt    int64  `json:"dt"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []owmCondition `json:"weather"`
}

// FetchCurrent implements weather.CurrentProvider.
func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, q location.Query) (weather.CurrentConditions, error) {
	body, err := p.get(ctx, "weather", q)
	if err != nil {
		return weather.CurrentConditions{}, err
	}

	var payload owmCurrentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.CurrentConditions{}, fmt.Errorf("decode current weather: %w", err)
	}

	cur := weather.CurrentConditions{
		Name:        payload.Name,
		Country:     payload.Sys.Country,
		DisplayName: weather.DisplayName(payload.Name, payload.Sys.Country),
		Lat:         payload.Coord.Lat,
		Lon:         payload.Coord.Lon,
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Humidity:    payload.Main.Humidity,
		WindSpeed:   payload.Wind.Speed,
		Raw:         json.RawMessage(body),
	}
	if payload.Dt > 0 {
		cur.ObservedAt = time.Unix(payload.Dt, 0).UTC()
	}
	if len(payload.Weather) > 0 {
		cur.Description = forecast.TitleCase(payload.Weather[0].Description)
		cur.Icon = payload.Weather[0].Icon
	}
	return cur, nil
}

type owmForecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp *float64 `json:"temp"`
		} `json:"main"`
		Weather []owmCondition `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone *int   `json:"timezone"`
	} `json:"city"`
}

// FetchForecast implements weather.ForecastProvider. Samples missing a
// temperature or a condition are dropped and counted in Skipped.
func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, q location.Query) (weather.ForecastSeries, error) {
	body, err := p.get(ctx, "forecast", q)
	if err != nil {
		return weather.ForecastSeries{}, err
	}

	var payload owmForecastPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.ForecastSeries{}, fmt.Errorf("decode forecast: %w", err)
	}

	series := weather.ForecastSeries{
		City:           payload.City.Name,
		Country:        payload.City.Country,
		TimezoneOffset: payload.City.Timezone,
		Entries:        make([]forecast.Entry, 0, len(payload.List)),
		Raw:            json.RawMessage(body),
	}
	for _, item := range payload.List {
		if item.Main.Temp == nil || len(item.Weather) == 0 {
			series.Skipped++
			continue
		}
		series.Entries = append(series.Entries, forecast.Entry{
			Timestamp:   item.Dt,
			Temperature: *item.Main.Temp,
			Condition:   item.Weather[0].Description,
			Icon:        item.Weather[0].Icon,
		})
	}
	return series, nil
}
