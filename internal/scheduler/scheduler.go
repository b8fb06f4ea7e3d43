package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/weather"
)

// runTimeout bounds a single job run.
const runTimeout = 30 * time.Second

// Jobs is the part of the weather service the scheduler drives.
type Jobs interface {
	RefreshRadar(ctx context.Context) (weather.RadarFrame, error)
	Warm(ctx context.Context, locations []string) error
}

// Config selects which background jobs run and how often.
type Config struct {
	RadarInterval time.Duration // 0 disables the radar refresh job
	WarmInterval  time.Duration
	WarmLocations []string // empty disables the warm-up job
}

// Scheduler periodically refreshes radar frames and pre-warms the report cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      Jobs
	cfg       Config
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(jobs Jobs, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		jobs:      jobs,
		cfg:       cfg,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the periodic jobs and starts the underlying scheduler.
// Each job also runs once immediately.
func (s *Scheduler) Start() error {
	scheduled := 0

	if s.cfg.RadarInterval > 0 {
		if _, err := s.scheduler.Every(s.cfg.RadarInterval).Do(s.refreshRadar); err != nil {
			return err
		}
		scheduled++
	}

	if len(s.cfg.WarmLocations) > 0 {
		interval := s.cfg.WarmInterval
		if interval <= 0 {
			interval = 15 * time.Minute
		}
		if _, err := s.scheduler.Every(interval).Do(s.warm); err != nil {
			return err
		}
		scheduled++
	}

	if scheduled == 0 {
		s.logger.Info("no background jobs configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Int("jobs", scheduled))
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) refreshRadar() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	frame, err := s.jobs.RefreshRadar(ctx)
	if err != nil {
		s.logger.Warn("radar refresh failed", zap.Error(err))
		return
	}
	s.logger.Debug("radar refreshed", zap.Time("frame", frame.Time))
}

func (s *Scheduler) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	if err := s.jobs.Warm(ctx, s.cfg.WarmLocations); err != nil {
		s.logger.Warn("cache warm-up finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("cache warm-up completed",
		zap.Int("locations", len(s.cfg.WarmLocations)),
		zap.Duration("took", time.Since(start)),
	)
}
