package usecases

import (
	"context"
	"fmt"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
)

// CityService handles city-related business logic.
type CityService struct {
	cities    ports.CityRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewCityService creates a new CityService.
func NewCityService(cities ports.CityRepository, cache ports.CacheService, publisher ports.EventPublisher) *CityService {
	return &CityService{cities: cities, cache: cache, publisher: publisher}
}

func cityCacheKey(id string) string { return "cities:id:" + id }

// Create validates and stores a new city. New cities are active unless
// IsActive says otherwise.
func (s *CityService) Create(ctx context.Context, in PlaceInput) (_ *domain.City, err error) {
	ctx, span := tracer.Start(ctx, "CityService.Create")
	defer func() { finishSpan(span, err) }()

	city := &domain.City{UserID: in.UserID, IsActive: true}
	if _, err := in.apply(cityPlace(city), true); err != nil {
		return nil, err
	}

	if err := s.cities.Create(ctx, city); err != nil {
		return nil, fmt.Errorf("create city: %w", err)
	}

	publish(ctx, s.publisher, domain.KindCity, domain.ActionCreated, city.ID, city.ID)
	return city, nil
}

// Update applies the set fields of in to the city.
func (s *CityService) Update(ctx context.Context, id string, in PlaceInput) (_ *domain.City, err error) {
	ctx, span := tracer.Start(ctx, "CityService.Update")
	defer func() { finishSpan(span, err) }()

	city, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := in.apply(cityPlace(city), false)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, ErrNoChanges
	}

	if err := s.cities.Update(ctx, city); err != nil {
		return nil, fmt.Errorf("update city: %w", err)
	}

	cacheDelete(ctx, s.cache, cityCacheKey(id))
	publish(ctx, s.publisher, domain.KindCity, domain.ActionUpdated, city.ID, city.ID)
	return city, nil
}

// Delete removes a city. Its locations, roads and details go with it.
func (s *CityService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "CityService.Delete")
	defer func() { finishSpan(span, err) }()

	if err := s.cities.Delete(ctx, id); err != nil {
		return err
	}

	cacheDelete(ctx, s.cache, cityCacheKey(id))
	publish(ctx, s.publisher, domain.KindCity, domain.ActionDeleted, id, id)
	return nil
}

// GetByID returns a single city.
func (s *CityService) GetByID(ctx context.Context, id string) (*domain.City, error) {
	cacheKey := cityCacheKey(id)
	var cached domain.City
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	city, err := s.cities.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, s.cache, cacheKey, city, itemTTL)
	return city, nil
}

// List returns one page of cities.
func (s *CityService) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.City], error) {
	filter.Limit = clampListLimit(filter.Limit)

	cacheKey := listCacheKey("cities", filter)
	var cached ports.Page[domain.City]
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached, nil
	}

	cities, err := s.cities.List(ctx, filter)
	if err != nil {
		return ports.Page[domain.City]{}, err
	}

	cacheSet(ctx, s.cache, cacheKey, cities, listTTL)
	return cities, nil
}

// Invalidate drops the cached copy of a city, e.g. after another instance changed it.
func (s *CityService) Invalidate(ctx context.Context, id string) {
	cacheDelete(ctx, s.cache, cityCacheKey(id))
}

func cityPlace(c *domain.City) place {
	return place{
		name: &c.Name, address: &c.Address, description: &c.Description,
		imageURLs: &c.ImageURLs, geometry: &c.Geometry, location: &c.Location,
		isActive: &c.IsActive,
	}
}
