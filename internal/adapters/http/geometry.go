package http

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

type distanceRequest struct {
	Start *geospatial.Coordinate `json:"start"`
	End   *geospatial.Coordinate `json:"end"`
}

type segmentsRequest struct {
	Coordinates []geospatial.Coordinate `json:"coordinates"`
}

type wktRequest struct {
	WKT string `json:"wkt"`
}

type coordinateTextRequest struct {
	Text string `json:"text"`
}

// DistanceHandler measures the great-circle distance between two [lon, lat] pairs.
func DistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req distanceRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Start == nil || req.End == nil {
			return errBadRequest(c, "start and end are required")
		}
		if !req.Start.IsFinite() || !req.End.IsFinite() {
			return errBadRequest(c, "start and end must be [lon, lat] pairs")
		}
		return c.JSON(deps.Geometry.Distance(*req.Start, *req.End))
	}
}

// SegmentsHandler returns per-segment lengths, total and WKT for a polyline.
func SegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req segmentsRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return sendSummary(c, "segments", deps.Geometry.Summarize(req.Coordinates))
	}
}

// FormatDistanceHandler renders ?meters= for display. Missing or invalid
// input yields the placeholder.
func FormatDistanceHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		meters, err := strconv.ParseFloat(c.Query("meters"), 64)
		if err != nil {
			meters = math.NaN()
		}
		return c.JSON(fiber.Map{"formatted": deps.Geometry.Format(meters)})
	}
}

// PointWKTHandler reads the first POINT out of a WKT string.
func PointWKTHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req wktRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return c.JSON(deps.Geometry.Point(req.WKT))
	}
}

// LineStringWKTHandler reads the first LINESTRING out of a WKT string.
func LineStringWKTHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req wktRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return sendSummary(c, "wkt", deps.Geometry.LineString(req.WKT))
	}
}

// ParseCoordinatesHandler parses editable "lon,lat" text.
func ParseCoordinatesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req coordinateTextRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		return sendSummary(c, "text", deps.Geometry.ParseText(req.Text))
	}
}

func sendSummary(c *fiber.Ctx, source string, sum usecases.PolylineSummary) error {
	if sum.Dropped > 0 {
		metrics.CoordinatesDropped.WithLabelValues(source).Add(float64(sum.Dropped))
	}
	return c.JSON(sum)
}
