package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/weather"
	"github.com/i474232898/weather-lookup/internal/weather/providers"
)

// Client-facing error messages. Upstream detail never reaches the response.
const (
	msgLocationRequired = "Location parameter is required"
	msgLocationTooLong  = "Location must be 100 characters or fewer"
	msgNotConfigured    = "API key not configured"
	msgLocationNotFound = "Location not found"
	msgRadarUnavailable = "Radar data unavailable"
	msgInternal         = "Internal server error"
)

// Options configures the HTTP application shared by every hosting shell.
type Options struct {
	AppName      string
	AllowOrigins string // default "*"
	Logger       *zap.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewApp builds the fiber application with middleware, error handling and routes.
func NewApp(service *weather.Service, opts Options) *fiber.App {
	if opts.AppName == "" {
		opts.AppName = "weather-lookup"
	}
	if opts.AllowOrigins == "" {
		opts.AllowOrigins = "*"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 10 * time.Second
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          errorHandler(opts.Logger),
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(accessLog(opts.Logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.AllowOrigins,
		AllowHeaders: "Content-Type",
		AllowMethods: "GET, POST, OPTIONS",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": opts.AppName,
		})
	})

	RegisterRoutes(app, service)
	return app
}

// errorHandler is the single place where errors become responses.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, msg := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", requestID(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}

func statusFor(err error) (int, string) {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return fe.Code, msgInternal
		}
		return fe.Code, fe.Message
	}

	var se *providers.StatusError
	switch {
	case errors.Is(err, location.ErrEmpty):
		return fiber.StatusBadRequest, msgLocationRequired
	case errors.Is(err, location.ErrTooLong):
		return fiber.StatusBadRequest, msgLocationTooLong
	case errors.Is(err, weather.ErrNotConfigured):
		return fiber.StatusInternalServerError, msgNotConfigured
	case errors.As(err, &se):
		// Upstream rejections keep their status.
		return se.Code, msgLocationNotFound
	case errors.Is(err, weather.ErrLocationNotFound):
		return fiber.StatusNotFound, msgLocationNotFound
	case errors.Is(err, weather.ErrRadarUnavailable):
		return fiber.StatusServiceUnavailable, msgRadarUnavailable
	default:
		return fiber.StatusInternalServerError, msgInternal
	}
}

func accessLog(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			// Render the error now so the logged status is the one sent.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		logger.Info("request",
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		)
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return ""
}
