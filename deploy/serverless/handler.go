// Package handler exposes the HTTP API as a single net/http handler for
// serverless platforms. The fiber app is built once per process and reused
// across invocations; no scheduler runs here.
package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/bootstrap"
	"github.com/i474232898/weather-lookup/internal/config"
	"github.com/i474232898/weather-lookup/internal/logging"
)

var (
	once     sync.Once
	handler  http.Handler
	buildErr error
)

func build() {
	cfg, err := config.Load()
	if err != nil {
		buildErr = err
		return
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		buildErr = err
		return
	}

	built, err := bootstrap.Build(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to build service", zap.Error(err))
		buildErr = err
		return
	}

	app := httpapi.NewApp(built.Service, httpapi.Options{
		AllowOrigins: cfg.CORSAllowOrigins,
		Logger:       logger.Named("http"),
	})
	handler = adaptor.FiberApp(app)
}

// Handler is the platform entry point.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(build)
	if buildErr != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	handler.ServeHTTP(w, r)
}
