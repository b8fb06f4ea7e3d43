package httpapi

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-lookup/internal/forecast"
	"github.com/i474232898/weather-lookup/internal/location"
	"github.com/i474232898/weather-lookup/internal/present"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	// Raw upstream payloads, kept for existing browser clients.
	legacyWeather := func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		raw, err := service.CurrentRaw(c.UserContext(), loc)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	}
	legacyForecast := func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		raw, err := service.ForecastRaw(c.UserContext(), loc)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(raw)
	}
	app.Get("/weather", legacyWeather)
	app.Post("/weather", legacyWeather)
	app.Get("/forecast", legacyForecast)
	app.Post("/forecast", legacyForecast)

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		report, err := service.Lookup(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(newReportView(report))
	})

	v1.Get("/forecast/daily", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		days, err := service.Daily(c.UserContext(), loc)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"query": service.Resolve(loc),
			"daily": newDayViews(days),
		})
	})

	v1.Get("/location/resolve", func(c *fiber.Ctx) error {
		loc, err := parseLocation(c)
		if err != nil {
			return err
		}
		q := service.Resolve(loc)
		return c.JSON(fiber.Map{
			"query":   q,
			"display": q.String(),
		})
	})

	v1.Get("/radar", func(c *fiber.Ctx) error {
		frame, err := service.Radar(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(frame)
	})
}

// locationRequest holds the free-text location supplied by the client.
type locationRequest struct {
	Location string `json:"location" form:"location"`
}

// parseLocation reads ?location=, falling back to the request body for POST.
func parseLocation(c *fiber.Ctx) (string, error) {
	var req locationRequest
	req.Location = c.Query("location")
	if req.Location == "" && c.Method() == fiber.MethodPost && len(c.Body()) > 0 {
		// An unreadable body is treated as a missing location.
		_ = c.BodyParser(&req)
	}
	req.Location = strings.TrimSpace(req.Location)

	if err := location.Validate(req.Location); err != nil {
		return "", err
	}
	return req.Location, nil
}

type currentView struct {
	weather.CurrentConditions
	Glyph string `json:"glyph"`
}

type dayView struct {
	forecast.DailySummary
	Glyph string `json:"glyph"`
}

type reportView struct {
	Query     location.Query        `json:"query"`
	Current   currentView           `json:"current"`
	Daily     []dayView             `json:"daily"`
	Radar     *weather.RadarOverlay `json:"radar,omitempty"`
	FetchedAt time.Time             `json:"fetchedAt"`
}

func newReportView(r weather.Report) reportView {
	return reportView{
		Query: r.Query,
		Current: currentView{
			CurrentConditions: r.Current,
			Glyph:             present.Glyph(r.Current.Icon),
		},
		Daily:     newDayViews(r.Daily),
		Radar:     r.Radar,
		FetchedAt: r.FetchedAt,
	}
}

func newDayViews(days []forecast.DailySummary) []dayView {
	out := make([]dayView, 0, len(days))
	for _, d := range days {
		out = append(out, dayView{DailySummary: d, Glyph: present.Glyph(d.Icon)})
	}
	return out
}
