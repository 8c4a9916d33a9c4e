package httpapi

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/vinelogic/vineyard-telemetry/internal/store"
	"github.com/vinelogic/vineyard-telemetry/internal/telemetry"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. Handlers are
// thin adapters: all semantics live in the telemetry service.
func RegisterRoutes(app *fiber.App, service *telemetry.Service) {
	v1 := app.Group("/api/v1")

	// Ecowitt gateways push form-encoded flat payloads. The response is
	// always a success acknowledgment: a payload without usable metrics
	// is dropped silently, never failed, so the gateway does not retry.
	v1.Post("/ingest/ecowitt", func(c *fiber.Ctx) error {
		payload := make(map[string]any)
		c.Context().PostArgs().VisitAll(func(k, v []byte) {
			payload[string(k)] = string(v)
		})
		service.Ingest(payload, telemetry.SourceFlat)
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Wunderground-protocol stations push via query string.
	wunderground := func(c *fiber.Ctx) error {
		payload := make(map[string]any)
		c.Context().QueryArgs().VisitAll(func(k, v []byte) {
			payload[string(k)] = string(v)
		})
		service.Ingest(payload, telemetry.SourceFlat)
		return c.SendString("success")
	}
	v1.Get("/ingest/wunderground", wunderground)
	v1.Post("/ingest/wunderground", wunderground)

	v1.Get("/readings/latest", func(c *fiber.Ctx) error {
		latest, err := service.GetLatest()
		if err != nil {
			return mapNoData(err)
		}
		return c.JSON(latest)
	})

	v1.Get("/readings/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings := service.GetHistory(req.Hours, req.Limit)
		return c.JSON(fiber.Map{
			"count":    len(readings),
			"readings": readings,
		})
	})

	v1.Get("/stats", func(c *fiber.Ctx) error {
		hours, err := queryFloat(c, "hours", telemetry.DefaultStatsWindowHours)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if hours < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "hours must not be negative")
		}

		report, err := service.GetStats(hours)
		if err != nil {
			return mapNoData(err)
		}
		return c.JSON(report)
	})

	v1.Get("/alerts", func(c *fiber.Ctx) error {
		report, err := service.GetAlerts()
		if err != nil {
			return mapNoData(err)
		}
		return c.JSON(report)
	})

	v1.Get("/debug", func(c *fiber.Ctx) error {
		return c.JSON(service.GetDebugSnapshot())
	})
}

// mapNoData turns the core's empty-store signals into 404s; anything else is
// an internal error.
func mapNoData(err error) error {
	if errors.Is(err, store.ErrNoData) || errors.Is(err, telemetry.ErrWindowEmpty) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read telemetry")
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Hours float64 `validate:"gte=0"`
	Limit int     `validate:"gte=1,lte=1000"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	hours, err := queryFloat(c, "hours", 0)
	if err != nil {
		return err
	}
	h.Hours = hours

	h.Limit = telemetry.DefaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("invalid limit; must be an integer")
		}
		h.Limit = limit
	}
	return nil
}

func queryFloat(c *fiber.Ctx, name string, def float64) (float64, error) {
	s := c.Query(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid " + name + "; must be a number")
	}
	return v, nil
}
