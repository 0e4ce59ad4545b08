package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

type routeRequest struct {
	StartLon *float64 `json:"start_lon"`
	StartLat *float64 `json:"start_lat"`
	EndLon   *float64 `json:"end_lon"`
	EndLat   *float64 `json:"end_lat"`
}

// RouteHandler plans the shortest road route between two points.
func RouteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Routes == nil {
			return errUnavailable(c, "route planning unavailable")
		}

		var req routeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.StartLon == nil || req.StartLat == nil || req.EndLon == nil || req.EndLat == nil {
			return errBadRequest(c, "missing coordinates")
		}

		start := geospatial.NewCoordinate(*req.StartLon, *req.StartLat)
		end := geospatial.NewCoordinate(*req.EndLon, *req.EndLat)
		route, err := deps.Routes.Plan(c.UserContext(), start, end)
		if err != nil {
			if errors.Is(err, usecases.ErrNoRoute) {
				metrics.RoutesPlanned.WithLabelValues("no_route").Inc()
			}
			return serviceError(c, err, "route")
		}

		metrics.RoutesPlanned.WithLabelValues("found").Inc()
		return c.JSON(route)
	}
}
