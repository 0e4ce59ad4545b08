package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/yangonmaps/citymap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// legacySunset is when the unversioned aliases go away.
var legacySunset = time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC)

var legacyRoutes = []DeprecatedRoute{
	{Path: "/cities", SunsetDate: legacySunset, Alternative: "/v1/cities"},
	{Path: "/cities/:id", SunsetDate: legacySunset, Alternative: "/v1/cities/{id}"},
	{Path: "/locations", SunsetDate: legacySunset, Alternative: "/v1/locations"},
	{Path: "/locations/:id", SunsetDate: legacySunset, Alternative: "/v1/locations/{id}"},
	{Path: "/roads", SunsetDate: legacySunset, Alternative: "/v1/roads"},
	{Path: "/roads/:id", SunsetDate: legacySunset, Alternative: "/v1/roads/{id}"},
	{Path: "/routes", SunsetDate: legacySunset, Alternative: "/v1/routes"},
}

// RouterOptions carries settings for SetupRoutes that do not come from the
// services themselves.
type RouterOptions struct {
	OpenAPIPath  string // defaults to DefaultOpenAPIPath
	RateLimit    int    // requests per minute per IP, 0 disables limiting
	DisableCache bool   // skip ETag and Cache-Control defaults
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies, opts ...RouterOptions) {
	o := RouterOptions{OpenAPIPath: DefaultOpenAPIPath, RateLimit: 120}
	if len(opts) > 0 {
		o = opts[0]
		if o.OpenAPIPath == "" {
			o.OpenAPIPath = DefaultOpenAPIPath
		}
	}

	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	if o.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        o.RateLimit,
			Expiration: 1 * time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
			},
		}))
	}

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	if !o.DisableCache {
		app.Use(ETagMiddleware())
		app.Use(CachingMiddleware())
	}

	// Health & readiness run without the request timeout.
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	with := func(h fiber.Handler) fiber.Handler {
		return timeout.NewWithContext(h, requestTimeout)
	}

	v1 := app.Group("/v1")

	v1.Get("/cities", with(ListCitiesHandler(deps)))
	v1.Post("/cities", with(CreateCityHandler(deps)))
	v1.Get("/cities/:id", with(GetCityHandler(deps)))
	v1.Put("/cities/:id", with(UpdateCityHandler(deps)))
	v1.Delete("/cities/:id", with(DeleteCityHandler(deps)))
	v1.Get("/cities/:id/details", with(CityDetailsHandler(deps)))
	v1.Get("/cities/:id/locations", with(CityLocationsHandler(deps)))
	v1.Get("/cities/:id/roads", with(CityRoadsHandler(deps)))
	v1.Get("/cities/:id/export.kml", with(ExportCityKMLHandler(deps)))

	v1.Get("/city-details", with(ListCityDetailsHandler(deps)))
	v1.Post("/city-details", with(CreateCityDetailHandler(deps)))
	v1.Put("/city-details/:id", with(UpdateCityDetailHandler(deps)))
	v1.Delete("/city-details/:id", with(DeleteCityDetailHandler(deps)))

	v1.Get("/locations", with(ListLocationsHandler(deps)))
	v1.Post("/locations", with(CreateLocationHandler(deps)))
	v1.Get("/locations/nearby", with(NearbyLocationsHandler(deps)))
	v1.Get("/locations/:id", with(GetLocationHandler(deps)))
	v1.Put("/locations/:id", with(UpdateLocationHandler(deps)))
	v1.Delete("/locations/:id", with(DeleteLocationHandler(deps)))

	v1.Get("/roads", with(ListRoadsHandler(deps)))
	v1.Post("/roads", with(CreateRoadHandler(deps)))
	v1.Get("/roads/:id", with(GetRoadHandler(deps)))
	v1.Put("/roads/:id", with(UpdateRoadHandler(deps)))
	v1.Delete("/roads/:id", with(DeleteRoadHandler(deps)))

	v1.Post("/routes", with(RouteHandler(deps)))

	geo := v1.Group("/geometry")
	geo.Post("/distance", DistanceHandler(deps))
	geo.Post("/segments", SegmentsHandler(deps))
	geo.Get("/format", FormatDistanceHandler(deps))
	geo.Post("/wkt/point", PointWKTHandler(deps))
	geo.Post("/wkt/linestring", LineStringWKTHandler(deps))
	geo.Post("/coordinates/parse", ParseCoordinatesHandler(deps))

	// Unversioned aliases kept for the first mobile release.
	legacy := DeprecationMiddleware(legacyRoutes)
	app.Get("/cities", legacy, with(ListCitiesHandler(deps)))
	app.Get("/cities/:id", legacy, with(GetCityHandler(deps)))
	app.Get("/locations", legacy, with(ListLocationsHandler(deps)))
	app.Get("/locations/:id", legacy, with(GetLocationHandler(deps)))
	app.Get("/roads", legacy, with(ListRoadsHandler(deps)))
	app.Get("/roads/:id", legacy, with(GetRoadHandler(deps)))
	app.Post("/routes", legacy, with(RouteHandler(deps)))

	app.Post("/graphql", GraphQLHandler(deps))

	SetupDocs(app, o.OpenAPIPath)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
