package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-lookup/internal/api/http"
	"github.com/i474232898/weather-lookup/internal/bootstrap"
	"github.com/i474232898/weather-lookup/internal/scheduler"
)

func newServeCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with background radar refresh and cache warm-up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), g)
		},
	}
}

func serve(ctx context.Context, g *globals) error {
	cfg, logger := g.cfg, g.logger

	built, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer built.Close()

	// Scheduler that keeps radar frames and popular locations fresh.
	sched := scheduler.New(built.Service, scheduler.Config{
		RadarInterval: cfg.RadarRefreshInterval,
		WarmInterval:  cfg.WarmInterval,
		WarmLocations: cfg.WarmLocations,
	}, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := httpapi.NewApp(built.Service, httpapi.Options{
		AllowOrigins: cfg.CORSAllowOrigins,
		Logger:       logger.Named("http"),
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("port", cfg.Port))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	// Wait for termination signal
	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("error during shutdown", zap.Error(err))
		return err
	}
	return nil
}
