package http

import (
	"bytes"
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/yangonmaps/citymap/internal/adapters/kml"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

const kmlContentType = "application/vnd.google-earth.kml+xml"

// ExportCityKMLHandler streams a city with all of its locations and roads
// as a KML document.
func ExportCityKMLHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city id must be a UUID")
		}
		ctx := c.UserContext()

		city, err := deps.Cities.GetByID(ctx, id)
		if err != nil {
			return serviceError(c, err, "city")
		}
		locations, err := collectAll(ctx, id, deps.Locations.List)
		if err != nil {
			return serviceError(c, err, "location")
		}
		roads, err := collectAll(ctx, id, deps.Roads.List)
		if err != nil {
			return serviceError(c, err, "road")
		}

		var buf bytes.Buffer
		if err := kml.WriteCity(&buf, city, locations, roads); err != nil {
			LoggerFromCtx(ctx).Error("kml export failed", "city_id", id, "error", err)
			return errInternal(c, "kml export failed")
		}

		c.Attachment("city-" + id + ".kml")
		c.Set(fiber.HeaderContentType, kmlContentType)
		return c.Send(buf.Bytes())
	}
}

// collectAll pages through a city-scoped list until every item is read.
func collectAll[T any](ctx context.Context, cityID string, list func(context.Context, ports.ListFilter) (ports.Page[T], error)) ([]T, error) {
	filter := ports.ListFilter{CityID: cityID, Limit: maxPageLimit}
	var items []T
	for {
		page, err := list(ctx, filter)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		filter.Offset += len(page.Items)
		if len(page.Items) == 0 || filter.Offset >= page.Total {
			return items, nil
		}
	}
}
