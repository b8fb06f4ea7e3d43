// Package bootstrap assembles the weather service from configuration. Every
// hosting shell (server, CLI, serverless handler) goes through Build.
package bootstrap

import (
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// App holds the wired service and the resources that must be released.
type App struct {
	Service *weather.Service
	closers []io.Closer
}

// Close releases held resources such as the Redis connection.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build wires providers, the report cache and the service.
func Build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	app := &App{}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), max(cfg.RateLimitBurst, 1))
	}

	owm := providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey,
		providers.WithBaseURL(cfg.OpenWeatherBaseURL),
		providers.WithLimiter(limiter),
	)
	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; weather requests will fail")
	}
	radar := providers.NewRainViewerProvider(httpClient, cfg.RainViewerURL)

	var cache weather.Store
	if cfg.RedisAddr != "" {
		client, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		redisStore := store.NewRedisStore(client, cfg.CacheTTL)
		app.closers = append(app.closers, redisStore)
		cache = redisStore
		logger.Info("using redis report cache", zap.String("addr", cfg.RedisAddr))
	} else {
		cache = store.NewMemoryStore(cfg.CacheMaxEntries, cfg.CacheTTL)
	}

	opts := []weather.Option{
		weather.WithStore(cache),
		weather.WithRadar(radar),
		weather.WithLogger(logger.Named("weather")),
	}
	if cfg.DisplayTimezone != nil {
		opts = append(opts, weather.WithDisplayZone(cfg.DisplayTimezone))
	}

	app.Service = weather.NewService(owm, owm, opts...)
	return app, nil
}
