package http

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yangonmaps/citymap/internal/core/ports"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// listFilter reads offset, limit, city_id and active from the query string.
// cityID, when not empty, overrides the query (for /cities/:id/... routes).
func listFilter(c *fiber.Ctx, cityID string) (ports.ListFilter, error) {
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	limit := c.QueryInt("limit", defaultPageLimit)
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if cityID == "" {
		cityID = c.Query("city_id")
		if cityID != "" && !isUUID(cityID) {
			return ports.ListFilter{}, fmt.Errorf("city_id must be a UUID")
		}
	}

	return ports.ListFilter{
		CityID:     cityID,
		ActiveOnly: c.QueryBool("active", false),
		Limit:      limit,
		Offset:     offset,
	}, nil
}

// writePage sends page with pagination metadata and Link headers.
func writePage[T any](c *fiber.Ctx, filter ports.ListFilter, page ports.Page[T]) error {
	pg := Pagination{Offset: filter.Offset, Limit: filter.Limit, Total: page.Total}
	SetLinkHeaders(c, pg)
	return c.JSON(PaginatedResponse{Data: page.Items, Pagination: pg})
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// It keeps the request path and every query parameter except offset/limit.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()

	extra := url.Values{}
	c.Context().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		if k != "offset" && k != "limit" {
			extra.Add(k, string(value))
		}
	})
	suffix := ""
	if len(extra) > 0 {
		suffix = "&" + extra.Encode()
	}

	link := func(offset int, rel string) string {
		return fmt.Sprintf(`<%s?offset=%d&limit=%d%s>; rel="%s"`, base, offset, p.Limit, suffix, rel)
	}

	links := []string{link(0, "first")}

	if p.Offset > 0 {
		links = append(links, link(max(p.Offset-p.Limit, 0), "prev"))
	}

	if p.Offset+p.Limit < p.Total {
		links = append(links, link(p.Offset+p.Limit, "next"))
	}

	links = append(links, link(max(p.Total-p.Limit, 0), "last"))

	c.Set("Link", strings.Join(links, ", "))
}
