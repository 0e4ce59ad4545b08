package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// userIDHeader carries the editor's user ID; authentication happens upstream.
const userIDHeader = "X-User-ID"

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil && len(s) == 36
}

// pathID returns the :id route parameter and whether it is a UUID.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	return id, isUUID(id)
}

func userID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(userIDHeader)); isUUID(id) {
		return id
	}
	return ""
}

// validCityRef checks an optional city_id from a request body.
func validCityRef(cityID *string) bool {
	return cityID == nil || *cityID == "" || isUUID(*cityID)
}

// placeRequest is the JSON body shared by city and location writes.
type placeRequest struct {
	Name        *domain.LocalizedText    `json:"name"`
	Address     *domain.LocalizedText    `json:"address"`
	Description *domain.LocalizedText    `json:"description"`
	ImageURLs   []string                 `json:"image_urls"`
	Lon         *float64                 `json:"lon"`
	Lat         *float64                 `json:"lat"`
	Geometry    geospatial.PointGeometry `json:"geometry"`
	IsActive    *bool                    `json:"is_active"`
}

func (r placeRequest) input(userID string) usecases.PlaceInput {
	return usecases.PlaceInput{
		UserID:      userID,
		Name:        r.Name,
		Address:     r.Address,
		Description: r.Description,
		ImageURLs:   r.ImageURLs,
		Lon:         r.Lon,
		Lat:         r.Lat,
		Geometry:    string(r.Geometry),
		IsActive:    r.IsActive,
	}
}

type locationRequest struct {
	placeRequest
	CityID       *string `json:"city_id"`
	LocationType *string `json:"location_type"`
}

type cityDetailRequest struct {
	CityID          *string               `json:"city_id"`
	PredefinedTitle *string               `json:"predefined_title"`
	Subtitle        *domain.LocalizedText `json:"subtitle"`
	Body            *domain.LocalizedText `json:"body"`
	ImageURLs       []string              `json:"image_urls"`
}

// roadRequest accepts coordinates as [lon, lat] pairs or {lon, lat} objects,
// as editable "lon,lat" text, or as a Google encoded polyline, in that order
// of precedence. Unusable pairs are dropped before measuring.
type roadRequest struct {
	CityID          *string                 `json:"city_id"`
	Name            *domain.LocalizedText   `json:"name"`
	RoadType        *string                 `json:"road_type"`
	IsOneway        *bool                   `json:"is_oneway"`
	IsActive        *bool                   `json:"is_active"`
	Coordinates     []geospatial.Coordinate `json:"coordinates"`
	CoordinateText  *string                 `json:"coordinate_text"`
	EncodedPolyline *string                 `json:"encoded_polyline"`
}

func (r roadRequest) input(userID string) (usecases.RoadInput, error) {
	in := usecases.RoadInput{
		UserID:         userID,
		CityID:         r.CityID,
		Name:           r.Name,
		RoadType:       r.RoadType,
		IsOneway:       r.IsOneway,
		IsActive:       r.IsActive,
		Coordinates:    r.Coordinates,
		CoordinateText: r.CoordinateText,
	}
	if in.Coordinates == nil && in.CoordinateText == nil && r.EncodedPolyline != nil {
		coords, err := geospatial.DecodePolyline(*r.EncodedPolyline)
		if err != nil {
			return in, err
		}
		in.Coordinates = coords
	}
	return in, nil
}

// ---- Cities ----

// ListCitiesHandler returns one page of cities.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listFilter(c, "")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		page, err := deps.Cities.List(c.UserContext(), filter)
		if err != nil {
			return serviceError(c, err, "city")
		}
		return writePage(c, filter, page)
	}
}

// GetCityHandler returns a city by ID.
func GetCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city id must be a UUID")
		}
		city, err := deps.Cities.GetByID(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "city")
		}
		return c.JSON(city)
	}
}

// CreateCityHandler stores a new city.
func CreateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		city, err := deps.Cities.Create(c.UserContext(), req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "city")
		}
		return c.Status(fiber.StatusCreated).JSON(city)
	}
}

// UpdateCityHandler applies a partial update to a city.
func UpdateCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city id must be a UUID")
		}
		var req placeRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		city, err := deps.Cities.Update(c.UserContext(), id, req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "city")
		}
		return c.JSON(city)
	}
}

// DeleteCityHandler removes a city and everything in it.
func DeleteCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city id must be a UUID")
		}
		if err := deps.Cities.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, "city")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// CityLocationsHandler lists the locations of a city.
func CityLocationsHandler(deps *Dependencies) fiber.Handler {
	return cityScoped(func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Location], error) {
		return deps.Locations.List(ctx, f)
	}, "location")
}

// CityRoadsHandler lists the roads of a city.
func CityRoadsHandler(deps *Dependencies) fiber.Handler {
	return cityScoped(func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.Road], error) {
		return deps.Roads.List(ctx, f)
	}, "road")
}

// CityDetailsHandler lists the content blocks of a city.
func CityDetailsHandler(deps *Dependencies) fiber.Handler {
	return cityScoped(func(ctx context.Context, f ports.ListFilter) (ports.Page[domain.CityDetail], error) {
		return deps.CityDetails.List(ctx, f)
	}, "city detail")
}

func cityScoped[T any](list func(context.Context, ports.ListFilter) (ports.Page[T], error), what string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city id must be a UUID")
		}
		filter, err := listFilter(c, id)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		page, err := list(c.UserContext(), filter)
		if err != nil {
			return serviceError(c, err, what)
		}
		return writePage(c, filter, page)
	}
}

// ---- City details ----

// ListCityDetailsHandler returns one page of city details, optionally by city_id.
func ListCityDetailsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listFilter(c, "")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		page, err := deps.CityDetails.List(c.UserContext(), filter)
		if err != nil {
			return serviceError(c, err, "city detail")
		}
		return writePage(c, filter, page)
	}
}

// CreateCityDetailHandler stores a new city detail.
func CreateCityDetailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req cityDetailRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !validCityRef(req.CityID) {
			return errBadRequest(c, "city_id must be a UUID")
		}
		detail, err := deps.CityDetails.Create(c.UserContext(), req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "city detail")
		}
		return c.Status(fiber.StatusCreated).JSON(detail)
	}
}

// UpdateCityDetailHandler applies a partial update to a city detail.
func UpdateCityDetailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city detail id must be a UUID")
		}
		var req cityDetailRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !validCityRef(req.CityID) {
			return errBadRequest(c, "city_id must be a UUID")
		}
		detail, err := deps.CityDetails.Update(c.UserContext(), id, req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "city detail")
		}
		return c.JSON(detail)
	}
}

// DeleteCityDetailHandler removes a city detail.
func DeleteCityDetailHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "city detail id must be a UUID")
		}
		if err := deps.CityDetails.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, "city detail")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (r cityDetailRequest) input(userID string) usecases.CityDetailInput {
	return usecases.CityDetailInput{
		UserID:          userID,
		CityID:          r.CityID,
		PredefinedTitle: r.PredefinedTitle,
		Subtitle:        r.Subtitle,
		Body:            r.Body,
		ImageURLs:       r.ImageURLs,
	}
}

// ---- Locations ----

// ListLocationsHandler returns one page of locations, optionally by city_id.
func ListLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listFilter(c, "")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		page, err := deps.Locations.List(c.UserContext(), filter)
		if err != nil {
			return serviceError(c, err, "location")
		}
		return writePage(c, filter, page)
	}
}

// NearbyLocationsHandler returns active locations within a radius of a point.
func NearbyLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Query("lat") == "" || c.Query("lon") == "" {
			return errBadRequest(c, "lat and lon are required")
		}
		lat := c.QueryFloat("lat", 0)
		lon := c.QueryFloat("lon", 0)
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return errBadRequest(c, "lat/lon out of range")
		}
		radius := c.QueryFloat("radius", 1000)
		if radius <= 0 || radius > 50000 {
			return errBadRequest(c, "radius must be between 1 and 50000 meters")
		}
		limit := c.QueryInt("limit", 20)

		locs, err := deps.Locations.FindNearby(c.UserContext(), lat, lon, radius, limit)
		if err != nil {
			return serviceError(c, err, "location")
		}

		c.Set("Cache-Control", "public, max-age=60")
		return c.JSON(locs)
	}
}

// GetLocationHandler returns a location by ID.
func GetLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "location id must be a UUID")
		}
		loc, err := deps.Locations.GetByID(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "location")
		}
		return c.JSON(loc)
	}
}

// CreateLocationHandler stores a new location.
func CreateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !validCityRef(req.CityID) {
			return errBadRequest(c, "city_id must be a UUID")
		}
		loc, err := deps.Locations.Create(c.UserContext(), req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "location")
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}

// UpdateLocationHandler applies a partial update to a location.
func UpdateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "location id must be a UUID")
		}
		var req locationRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if !validCityRef(req.CityID) {
			return errBadRequest(c, "city_id must be a UUID")
		}
		loc, err := deps.Locations.Update(c.UserContext(), id, req.input(userID(c)))
		if err != nil {
			return serviceError(c, err, "location")
		}
		return c.JSON(loc)
	}
}

// DeleteLocationHandler removes a location.
func DeleteLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "location id must be a UUID")
		}
		if err := deps.Locations.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, "location")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (r locationRequest) input(userID string) usecases.LocationInput {
	return usecases.LocationInput{
		PlaceInput:   r.placeRequest.input(userID),
		CityID:       r.CityID,
		LocationType: r.LocationType,
	}
}

// ---- Roads ----

// ListRoadsHandler returns one page of roads, optionally by city_id.
func ListRoadsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter, err := listFilter(c, "")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		page, err := deps.Roads.List(c.UserContext(), filter)
		if err != nil {
			return serviceError(c, err, "road")
		}
		return writePage(c, filter, page)
	}
}

// GetRoadHandler returns a road with coordinates, lengths and encoded polyline.
func GetRoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "road id must be a UUID")
		}
		road, err := deps.Roads.GetByID(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err, "road")
		}
		return c.JSON(road)
	}
}

// CreateRoadHandler stores a new road and computes its segment lengths.
func CreateRoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, msg := parseRoadRequest(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		road, err := deps.Roads.Create(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err, "road")
		}
		return c.Status(fiber.StatusCreated).JSON(road)
	}
}

// UpdateRoadHandler applies a partial update to a road.
func UpdateRoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "road id must be a UUID")
		}
		in, msg := parseRoadRequest(c)
		if msg != "" {
			return errBadRequest(c, msg)
		}
		road, err := deps.Roads.Update(c.UserContext(), id, in)
		if err != nil {
			return serviceError(c, err, "road")
		}
		return c.JSON(road)
	}
}

// DeleteRoadHandler removes a road.
func DeleteRoadHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := pathID(c)
		if !ok {
			return errBadRequest(c, "road id must be a UUID")
		}
		if err := deps.Roads.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err, "road")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// parseRoadRequest decodes a road body. A non-empty message means 400.
func parseRoadRequest(c *fiber.Ctx) (usecases.RoadInput, string) {
	var req roadRequest
	if err := c.BodyParser(&req); err != nil {
		return usecases.RoadInput{}, "invalid request body"
	}
	if !validCityRef(req.CityID) {
		return usecases.RoadInput{}, "city_id must be a UUID"
	}
	in, err := req.input(userID(c))
	if err != nil {
		return usecases.RoadInput{}, "invalid encoded_polyline"
	}
	return in, ""
}
