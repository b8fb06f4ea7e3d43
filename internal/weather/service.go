package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/location"
)

// radarMaxAge is how long a fetched radar frame is reused before refetching.
const radarMaxAge = 10 * time.Minute

// Service resolves locations, fetches current conditions and forecasts from the
// upstream providers and assembles them into reports.
type Service struct {
	current  CurrentProvider
	forecast ForecastProvider
	radar    RadarProvider
	store    Store
	logger   *zap.Logger

	// displayZone overrides the per-location zone used for day grouping.
	displayZone *time.Location
	now         func() time.Time

	radarMu      sync.RWMutex
	radarFrame   *RadarFrame
	radarFetched time.Time
	radarFlight  singleflight.Group
}

// Option configures optional Service collaborators.
type Option func(*Service)

func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

func WithRadar(radar RadarProvider) Option {
	return func(s *Service) { s.radar = radar }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithDisplayZone groups forecast days in zone instead of the location's own offset.
func WithDisplayZone(zone *time.Location) Option {
	return func(s *Service) { s.displayZone = zone }
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service.
func NewService(current CurrentProvider, fc ForecastProvider, opts ...Option) *Service {
	s := &Service{
		current:  current,
		forecast: fc,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve exposes the location classification used for every lookup.
func (s *Service) Resolve(raw string) location.Query {
	return location.Resolve(raw)
}

// resolveValid rejects empty or oversized input before anything goes upstream.
func resolveValid(raw string) (location.Query, error) {
	if err := location.Validate(raw); err != nil {
		return location.Query{}, err
	}
	return location.Resolve(raw), nil
}

// Lookup returns current conditions, the daily forecast and the radar overlay for
// raw, serving from the cache when a fresh report exists.
func (s *Service) Lookup(ctx context.Context, raw string) (Report, error) {
	q, err := resolveValid(raw)
	if err != nil {
		return Report{}, err
	}

	if s.store != nil {
		report, err := s.store.Get(ctx, q.Key())
		if err == nil {
			s.logger.Debug("report cache hit", zap.String("key", q.Key()))
			return report, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("report cache read failed", zap.String("key", q.Key()), zap.Error(err))
		}
	}

	return s.fetchReport(ctx, q)
}

// Warm fetches fresh reports for every location and stores them, bypassing the
// cache. Invalid locations are reported without an upstream call.
func (s *Service) Warm(ctx context.Context, locations []string) error {
	var errs []error
	for _, raw := range locations {
		q, err := resolveValid(raw)
		if err != nil {
			s.logger.Warn("skipping invalid warm-up location", zap.String("location", raw), zap.Error(err))
			errs = append(errs, fmt.Errorf("warm-up location %q: %w", raw, err))
			continue
		}
		if _, err := s.fetchReport(ctx, q); err != nil {
			s.logger.Warn("cache warm-up failed", zap.String("location", q.String()), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Service) fetchReport(ctx context.Context, q location.Query) (Report, error) {
	var (
		current CurrentConditions
		series  ForecastSeries
	)

	// The two upstream calls are independent.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = s.fetchCurrent(gctx, q)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = s.fetchForecast(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{
		Query:     q,
		Current:   current,
		Daily:     forecast.Aggregate(series.Entries, s.zoneFor(series)),
		FetchedAt: s.now().UTC(),
	}

	if frame, ok := s.latestRadar(ctx); ok {
		report.Radar = &RadarOverlay{
			Lat:   current.Lat,
			Lon:   current.Lon,
			Zoom:  RadarZoom,
			Frame: frame,
		}
	}

	if s.store != nil {
		if err := s.store.Save(ctx, q.Key(), report); err != nil {
			s.logger.Warn("report cache write failed", zap.String("key", q.Key()), zap.Error(err))
		}
	}
	return report, nil
}

// Current returns current conditions for raw without touching the cache.
func (s *Service) Current(ctx context.Context, raw string) (CurrentConditions, error) {
	q, err := resolveValid(raw)
	if err != nil {
		return CurrentConditions{}, err
	}
	return s.fetchCurrent(ctx, q)
}

// Daily returns the daily forecast summaries for raw without touching the cache.
func (s *Service) Daily(ctx context.Context, raw string) ([]forecast.DailySummary, error) {
	q, err := resolveValid(raw)
	if err != nil {
		return nil, err
	}
	series, err := s.fetchForecast(ctx, q)
	if err != nil {
		return nil, err
	}
	return forecast.Aggregate(series.Entries, s.zoneFor(series)), nil
}

// CurrentRaw returns the upstream current-weather payload unmodified.
func (s *Service) CurrentRaw(ctx context.Context, raw string) (json.RawMessage, error) {
	q, err := resolveValid(raw)
	if err != nil {
		return nil, err
	}
	current, err := s.fetchCurrent(ctx, q)
	if err != nil {
		return nil, err
	}
	return current.Raw, nil
}

// ForecastRaw returns the upstream forecast payload unmodified.
func (s *Service) ForecastRaw(ctx context.Context, raw string) (json.RawMessage, error) {
	q, err := resolveValid(raw)
	if err != nil {
		return nil, err
	}
	series, err := s.fetchForecast(ctx, q)
	if err != nil {
		return nil, err
	}
	return series.Raw, nil
}

func (s *Service) fetchCurrent(ctx context.Context, q location.Query) (CurrentConditions, error) {
	if s.current == nil {
		return CurrentConditions{}, ErrNotConfigured
	}
	current, err := s.current.FetchCurrent(ctx, q)
	if err != nil {
		return CurrentConditions{}, fmt.Errorf("%s current weather for %s: %w", s.current.Name(), q, err)
	}
	return current, nil
}

func (s *Service) fetchForecast(ctx context.Context, q location.Query) (ForecastSeries, error) {
	if s.forecast == nil {
		return ForecastSeries{}, ErrNotConfigured
	}
	series, err := s.forecast.FetchForecast(ctx, q)
	if err != nil {
		return ForecastSeries{}, fmt.Errorf("%s forecast for %s: %w", s.forecast.Name(), q, err)
	}
	if series.Skipped > 0 {
		s.logger.Warn("skipped malformed forecast entries",
			zap.String("location", q.String()),
			zap.Int("skipped", series.Skipped),
			zap.Int("kept", len(series.Entries)),
		)
	}
	return series, nil
}

// zoneFor picks the zone forecast days are grouped in: the configured display
// zone, else the location's own UTC offset, else UTC.
func (s *Service) zoneFor(series ForecastSeries) *time.Location {
	if s.displayZone != nil {
		return s.displayZone
	}
	if series.TimezoneOffset != nil {
		return time.FixedZone(series.City, *series.TimezoneOffset)
	}
	return time.UTC
}

// RefreshRadar fetches the latest radar frame and remembers it for later lookups.
func (s *Service) RefreshRadar(ctx context.Context) (RadarFrame, error) {
	if s.radar == nil {
		return RadarFrame{}, ErrRadarUnavailable
	}
	frame, err := s.radar.FetchLatestFrame(ctx)
	if err != nil {
		return RadarFrame{}, fmt.Errorf("%s latest frame: %w", s.radar.Name(), err)
	}

	s.radarMu.Lock()
	s.radarFrame = &frame
	s.radarFetched = s.now()
	s.radarMu.Unlock()

	return frame, nil
}

// Radar returns the most recent radar frame, fetching one if none is fresh.
func (s *Service) Radar(ctx context.Context) (RadarFrame, error) {
	frame, ok := s.latestRadar(ctx)
	if !ok {
		return RadarFrame{}, ErrRadarUnavailable
	}
	return frame, nil
}

// latestRadar never fails a lookup: a stale frame beats none, and no frame just
// means no overlay.
func (s *Service) latestRadar(ctx context.Context) (RadarFrame, bool) {
	if s.radar == nil {
		return RadarFrame{}, false
	}

	s.radarMu.RLock()
	cached, fetched := s.radarFrame, s.radarFetched
	s.radarMu.RUnlock()

	if cached != nil && s.now().Sub(fetched) < radarMaxAge {
		return *cached, true
	}

	// Concurrent lookups that find the frame stale share one upstream fetch.
	v, err, _ := s.radarFlight.Do("latest", func() (interface{}, error) {
		s.radarMu.RLock()
		current, at := s.radarFrame, s.radarFetched
		s.radarMu.RUnlock()
		if current != nil && s.now().Sub(at) < radarMaxAge {
			return *current, nil
		}
		return s.RefreshRadar(ctx)
	})
	if err != nil {
		s.logger.Warn("radar data unavailable", zap.Error(err))
		if cached != nil {
			return *cached, true
		}
		return RadarFrame{}, false
	}
	return v.(RadarFrame), true
}
