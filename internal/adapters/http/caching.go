package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets a default Cache-Control on GET responses that did
// not set one themselves.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if c.Method() != fiber.MethodGet || c.Get(fiber.HeaderCacheControl) != "" {
			return err
		}
		if ttl := cacheControlFor(c.Path()); ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}
		return err
	}
}

func cacheControlFor(path string) string {
	switch {
	case path == "/v1/health" || path == "/v1/ready":
		return "public, max-age=10"
	case path == "/metrics":
		return "no-cache"
	case strings.HasPrefix(path, "/v1/geometry/"):
		// Pure functions of the query.
		return "public, max-age=86400"
	case strings.HasSuffix(path, "/export.kml"):
		return "private, max-age=0"
	case strings.HasPrefix(path, "/v1/locations/nearby"):
		return "public, max-age=60"
	case strings.HasPrefix(path, "/v1/cities"),
		strings.HasPrefix(path, "/v1/city-details"),
		strings.HasPrefix(path, "/v1/locations"),
		strings.HasPrefix(path, "/v1/roads"):
		// Editors expect their changes to show up quickly.
		return "public, max-age=30"
	case strings.HasPrefix(path, "/v1/"):
		return "public, max-age=60"
	}
	return ""
}
