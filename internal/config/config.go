package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE on images without a zoneinfo database

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-lookup/internal/location"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	RainViewerURL      string

	Port        string
	HTTPTimeout time.Duration

	// DisplayTimezone, when set, overrides each location's own offset for
	// grouping forecast days.
	DisplayTimezone *time.Location

	// Report cache retention.
	CacheTTL        time.Duration
	CacheMaxEntries int // 0 = unlimited

	// Redis replaces the in-memory cache when RedisAddr is set.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Outbound pacing for the weather API.
	RateLimitRPS   float64
	RateLimitBurst int

	RadarRefreshInterval time.Duration
	WarmLocations        []string
	WarmInterval         time.Duration

	CORSAllowOrigins string

	LogLevel  string
	LogFormat string
}

// Load reads configuration from the given .env files (default ".env") and the
// environment, with sensible defaults. Missing .env files are not an error.
func Load(files ...string) (*AppConfig, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = os.Getenv("OPENWEATHER_BASE_URL")
	cfg.RainViewerURL = os.Getenv("RAINVIEWER_URL")
	cfg.Port = getenvDefault("PORT", "8080")

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if tz := os.Getenv("DISPLAY_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE: %w", err)
		}
		cfg.DisplayTimezone = loc
	}

	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	cfg.CacheMaxEntries = getenvInt("CACHE_MAX_ENTRIES", 1000)

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	// OpenWeatherMap's free tier allows 60 calls per minute.
	if cfg.RateLimitRPS, err = getenvFloat("RATE_LIMIT_RPS", 1); err != nil {
		return nil, err
	}
	cfg.RateLimitBurst = getenvInt("RATE_LIMIT_BURST", 10)

	if cfg.RadarRefreshInterval, err = getenvDuration("RADAR_REFRESH_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WarmLocations, err = splitLocations(os.Getenv("WARM_LOCATIONS")); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	cfg.CORSAllowOrigins = getenvDefault("CORS_ALLOW_ORIGINS", "*")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	return cfg, nil
}

// splitLocations parses "Baxter, IA;50401;Chicago". Commas belong to the
// locations themselves, so entries are separated by semicolons. Empty entries
// are dropped; any other entry must be a valid location.
func splitLocations(raw string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		if err := location.Validate(part); err != nil {
			return nil, fmt.Errorf("invalid WARM_LOCATIONS entry %q: %w", part, err)
		}
		out = append(out, part)
	}
	return out, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
