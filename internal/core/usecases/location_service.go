package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

// LocationInput carries location create/update fields.
type LocationInput struct {
	PlaceInput
	CityID       *string
	LocationType *string
}

// LocationService handles location-related business logic.
type LocationService struct {
	locations ports.LocationRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewLocationService creates a new LocationService.
func NewLocationService(locations ports.LocationRepository, cache ports.CacheService, publisher ports.EventPublisher) *LocationService {
	return &LocationService{locations: locations, cache: cache, publisher: publisher}
}

func locationCacheKey(id string) string { return "locations:id:" + id }

// Create validates and stores a new location.
func (s *LocationService) Create(ctx context.Context, in LocationInput) (_ *domain.Location, err error) {
	ctx, span := tracer.Start(ctx, "LocationService.Create")
	defer func() { finishSpan(span, err) }()

	if in.CityID == nil || strings.TrimSpace(*in.CityID) == "" {
		return nil, ErrCityRequired
	}

	loc := &domain.Location{UserID: in.UserID, CityID: *in.CityID, IsActive: true}
	if _, err := in.PlaceInput.apply(locationPlace(loc), true); err != nil {
		return nil, err
	}
	if in.LocationType != nil {
		loc.LocationType = strings.TrimSpace(*in.LocationType)
	}

	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}

	publish(ctx, s.publisher, domain.KindLocation, domain.ActionCreated, loc.ID, loc.CityID)
	return loc, nil
}

// Update applies the set fields of in to the location.
func (s *LocationService) Update(ctx context.Context, id string, in LocationInput) (_ *domain.Location, err error) {
	ctx, span := tracer.Start(ctx, "LocationService.Update")
	defer func() { finishSpan(span, err) }()

	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := in.PlaceInput.apply(locationPlace(loc), false)
	if err != nil {
		return nil, err
	}
	if in.CityID != nil {
		if strings.TrimSpace(*in.CityID) == "" {
			return nil, ErrCityRequired
		}
		loc.CityID = *in.CityID
		changed = true
	}
	if in.LocationType != nil {
		loc.LocationType = strings.TrimSpace(*in.LocationType)
		changed = true
	}
	if !changed {
		return nil, ErrNoChanges
	}

	if err := s.locations.Update(ctx, loc); err != nil {
		return nil, fmt.Errorf("update location: %w", err)
	}

	cacheDelete(ctx, s.cache, locationCacheKey(id))
	publish(ctx, s.publisher, domain.KindLocation, domain.ActionUpdated, loc.ID, loc.CityID)
	return loc, nil
}

// Delete removes a location and announces it under its city.
func (s *LocationService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "LocationService.Delete")
	defer func() { finishSpan(span, err) }()

	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.locations.Delete(ctx, id); err != nil {
		return err
	}

	cacheDelete(ctx, s.cache, locationCacheKey(id))
	publish(ctx, s.publisher, domain.KindLocation, domain.ActionDeleted, id, loc.CityID)
	return nil
}

// GetByID returns a single location.
func (s *LocationService) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	cacheKey := locationCacheKey(id)
	var cached domain.Location
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, loc, itemTTL)
	return loc, nil
}

// List returns one page of locations, optionally scoped to a city.
func (s *LocationService) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.Location], error) {
	filter.Limit = clampListLimit(filter.Limit)

	cacheKey := listCacheKey("locations", filter)
	var cached ports.Page[domain.Location]
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached, nil
	}

	locs, err := s.locations.List(ctx, filter)
	if err != nil {
		return ports.Page[domain.Location]{}, err
	}

	cacheSet(ctx, s.cache, cacheKey, locs, listTTL)
	return locs, nil
}

// FindNearby returns active locations within radiusMeters of the given point,
// closest first.
func (s *LocationService) FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if radiusMeters <= 0 {
		radiusMeters = 1000
	}
	if radiusMeters > 50000 {
		radiusMeters = 50000
	}

	cacheKey := fmt.Sprintf("locations:nearby:%.4f:%.4f:%.0f:%d", lat, lon, radiusMeters, limit)
	var cached []domain.Location
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached, nil
	}

	locs, err := s.locations.FindNearby(ctx, lat, lon, radiusMeters, limit)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, locs, listTTL)
	return locs, nil
}

// Invalidate drops the cached copy of a location.
func (s *LocationService) Invalidate(ctx context.Context, id string) {
	cacheDelete(ctx, s.cache, locationCacheKey(id))
}

func locationPlace(l *domain.Location) place {
	return place{
		name: &l.Name, address: &l.Address, description: &l.Description,
		imageURLs: &l.ImageURLs, geometry: &l.Geometry, location: &l.Location,
		isActive: &l.IsActive,
	}
}
