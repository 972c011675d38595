package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/shutterscout/internal/report"
	"github.com/i474232898/shutterscout/internal/scout"
	"github.com/i474232898/shutterscout/internal/store"
)

var validate = validator.New()

// runTimeout bounds an on-demand aggregation, retries included.
const runTimeout = 2 * time.Minute

// Service is what the routes need from the scout service.
type Service interface {
	Refresh(ctx context.Context, ip string) (scout.Snapshot, error)
	GetLatest(key string) (scout.Snapshot, error)
	GetRange(key string, from, to time.Time) ([]scout.Snapshot, error)
	Keys() []string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Service) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Post("/scout/runs", func(c *fiber.Ctx) error {
		var q runQuery
		q.IP = c.Query("ip")
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), runTimeout)
		defer cancel()

		snapshot, err := service.Refresh(ctx, q.IP)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, runFailureMessage(err))
		}
		return c.Status(fiber.StatusCreated).JSON(snapshot)
	})

	v1.Get("/scout/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"locations": service.Keys()})
	})

	v1.Get("/scout/latest", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(locReq.key())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no scout data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch scout data")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/scout/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshots, err := service.GetRange(req.Location.key(), req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no scout history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch scout history")
		}

		return c.JSON(fiber.Map{
			"location":  req.Location,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})

	v1.Get("/scout/report", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		snapshot, err := service.GetLatest(locReq.key())
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no scout data for requested location")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch scout data")
		}

		var b strings.Builder
		if err := report.Render(&b, snapshot); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render report")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(b.String())
	})
}

// runFailureMessage turns an aggregation error into a user-facing message.
func runFailureMessage(err error) string {
	switch {
	case errors.Is(err, scout.ErrLocationUnavailable):
		return "could not determine location; try again later"
	case errors.Is(err, scout.ErrRequiredData):
		return "could not fetch required data: " + err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return "scout run timed out"
	default:
		return "scout run failed"
	}
}

// runQuery holds query parameters for an on-demand run.
type runQuery struct {
	IP string `validate:"omitempty,ip"`
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `json:"city" validate:"required"`
	Country string `json:"country" validate:"required"`
}

func (l locationQuery) key() string {
	return scout.LocationKey(l.City, l.Country)
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = c.Query("city")
	q.Country = c.Query("country")

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
