package weather

import (
	"context"
	"errors"

	"github.com/i474232898/weather-lookup/internal/location"
)

var (
	// ErrNotConfigured is returned when the upstream API key is missing.
	ErrNotConfigured = errors.New("weather provider api key is not configured")
	// ErrLocationNotFound is returned when the upstream provider does not know the location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrRadarUnavailable is returned when no radar frame could be obtained.
	ErrRadarUnavailable = errors.New("radar data unavailable")
	// ErrNotFound is returned by a Store when no fresh report is cached for a key.
	ErrNotFound = errors.New("no cached report for location")
)

// CurrentProvider fetches current conditions for a resolved location.
type CurrentProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, q location.Query) (CurrentConditions, error)
}

// ForecastProvider fetches the fine-grained forecast series for a resolved location.
type ForecastProvider interface {
	Name() string
	FetchForecast(ctx context.Context, q location.Query) (ForecastSeries, error)
}

// RadarProvider fetches the most recent radar frame.
type RadarProvider interface {
	Name() string
	FetchLatestFrame(ctx context.Context) (RadarFrame, error)
}

// Store is the contract the report caches (in-memory, redis) must satisfy.
type Store interface {
	Save(ctx context.Context, key string, report Report) error
	Get(ctx context.Context, key string) (Report, error)
}
