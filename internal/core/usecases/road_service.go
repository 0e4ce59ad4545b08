package usecases

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// RoadInput carries road create/update fields. Coordinates may be given as
// explicit pairs or as editable "lon,lat" text; pairs win when both are set.
type RoadInput struct {
	UserID         string
	CityID         *string
	Name           *domain.LocalizedText
	RoadType       *string
	IsOneway       *bool
	IsActive       *bool
	Coordinates    []geospatial.Coordinate
	CoordinateText *string
}

func (in RoadInput) hasCoordinates() bool {
	return in.Coordinates != nil || in.CoordinateText != nil
}

// coordinates returns the usable pairs, dropping non-finite ones.
func (in RoadInput) coordinates() []geospatial.Coordinate {
	if in.Coordinates != nil {
		coords := make([]geospatial.Coordinate, 0, len(in.Coordinates))
		for _, c := range in.Coordinates {
			if c.IsFinite() {
				coords = append(coords, c)
			}
		}
		return coords
	}
	if in.CoordinateText != nil {
		return geospatial.ParseCoordinateText(*in.CoordinateText)
	}
	return nil
}

// RoadService handles road-related business logic.
type RoadService struct {
	roads     ports.RoadRepository
	cache     ports.CacheService
	publisher ports.EventPublisher
}

// NewRoadService creates a new RoadService.
func NewRoadService(roads ports.RoadRepository, cache ports.CacheService, publisher ports.EventPublisher) *RoadService {
	return &RoadService{roads: roads, cache: cache, publisher: publisher}
}

func roadCacheKey(id string) string { return "roads:id:" + id }

// Create validates and stores a new road. Its geometry and per-segment
// lengths are derived from the coordinates.
func (s *RoadService) Create(ctx context.Context, in RoadInput) (_ *domain.Road, err error) {
	ctx, span := tracer.Start(ctx, "RoadService.Create")
	defer func() { finishSpan(span, err) }()

	if in.CityID == nil || strings.TrimSpace(*in.CityID) == "" {
		return nil, ErrCityRequired
	}
	if in.Name == nil || in.Name.IsEmpty() {
		return nil, ErrNameRequired
	}

	road := &domain.Road{
		UserID:   in.UserID,
		CityID:   *in.CityID,
		Name:     *in.Name,
		IsActive: true,
	}
	if err := setRoadGeometry(road, in.coordinates()); err != nil {
		return nil, err
	}
	if in.RoadType != nil {
		road.RoadType = strings.TrimSpace(*in.RoadType)
	}
	if in.IsOneway != nil {
		road.IsOneway = *in.IsOneway
	}
	if in.IsActive != nil {
		road.IsActive = *in.IsActive
	}

	if err := s.roads.Create(ctx, road); err != nil {
		return nil, fmt.Errorf("create road: %w", err)
	}
	road.Decorate()

	publish(ctx, s.publisher, domain.KindRoad, domain.ActionCreated, road.ID, road.CityID)
	return road, nil
}

// Update applies the set fields of in to the road. New coordinates replace
// the geometry and recompute the segment lengths.
func (s *RoadService) Update(ctx context.Context, id string, in RoadInput) (_ *domain.Road, err error) {
	ctx, span := tracer.Start(ctx, "RoadService.Update")
	defer func() { finishSpan(span, err) }()

	road, err := s.roads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false
	if in.CityID != nil {
		if strings.TrimSpace(*in.CityID) == "" {
			return nil, ErrCityRequired
		}
		road.CityID = *in.CityID
		changed = true
	}
	if in.Name != nil {
		if in.Name.IsEmpty() {
			return nil, ErrNameRequired
		}
		road.Name = *in.Name
		changed = true
	}
	if in.RoadType != nil {
		road.RoadType = strings.TrimSpace(*in.RoadType)
		changed = true
	}
	if in.IsOneway != nil {
		road.IsOneway = *in.IsOneway
		changed = true
	}
	if in.IsActive != nil {
		road.IsActive = *in.IsActive
		changed = true
	}
	if in.hasCoordinates() {
		if err := setRoadGeometry(road, in.coordinates()); err != nil {
			return nil, err
		}
		changed = true
	}
	if !changed {
		return nil, ErrNoChanges
	}

	if err := s.roads.Update(ctx, road); err != nil {
		return nil, fmt.Errorf("update road: %w", err)
	}
	road.Decorate()

	cacheDelete(ctx, s.cache, roadCacheKey(id))
	publish(ctx, s.publisher, domain.KindRoad, domain.ActionUpdated, road.ID, road.CityID)
	return road, nil
}

// Delete removes a road. The stored record is read first so the delete
// event names its city.
func (s *RoadService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "RoadService.Delete")
	defer func() { finishSpan(span, err) }()

	road, err := s.roads.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.roads.Delete(ctx, id); err != nil {
		return err
	}

	cacheDelete(ctx, s.cache, roadCacheKey(id))
	publish(ctx, s.publisher, domain.KindRoad, domain.ActionDeleted, id, road.CityID)
	return nil
}

// GetByID returns a single road with its derived fields filled.
func (s *RoadService) GetByID(ctx context.Context, id string) (*domain.Road, error) {
	cacheKey := roadCacheKey(id)
	var cached domain.Road
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached, nil
	}

	road, err := s.roads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	road.Decorate()

	cacheSet(ctx, s.cache, cacheKey, road, itemTTL)
	return road, nil
}

// List returns one page of roads, optionally scoped to a city.
func (s *RoadService) List(ctx context.Context, filter ports.ListFilter) (ports.Page[domain.Road], error) {
	filter.Limit = clampListLimit(filter.Limit)

	cacheKey := listCacheKey("roads", filter)
	var cached ports.Page[domain.Road]
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return cached, nil
	}

	roads, err := s.roads.List(ctx, filter)
	if err != nil {
		return ports.Page[domain.Road]{}, err
	}
	for i := range roads.Items {
		roads.Items[i].Decorate()
	}

	cacheSet(ctx, s.cache, cacheKey, roads, listTTL)
	return roads, nil
}

// ListIDsByCity returns the IDs of every road in a city.
func (s *RoadService) ListIDsByCity(ctx context.Context, cityID string) ([]string, error) {
	var ids []string
	for offset := 0; ; offset += maxListLimit {
		page, err := s.roads.List(ctx, ports.ListFilter{CityID: cityID, Limit: maxListLimit, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("list roads: %w", err)
		}
		for _, r := range page.Items {
			ids = append(ids, r.ID)
		}
		if len(page.Items) < maxListLimit {
			return ids, nil
		}
	}
}

// RecomputeLengths re-derives a road's segment lengths from its stored
// geometry. It reports whether the stored lengths changed.
func (s *RoadService) RecomputeLengths(ctx context.Context, id string) (_ bool, err error) {
	ctx, span := tracer.Start(ctx, "RoadService.RecomputeLengths")
	defer func() { finishSpan(span, err) }()

	road, err := s.roads.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	lengths := geospatial.SegmentLengths(geospatial.ExtractLineStringCoords(road.Geometry))
	if slices.Equal(lengths, road.SegmentLengths) {
		return false, nil
	}

	if err := s.roads.UpdateLengths(ctx, id, lengths); err != nil {
		return false, fmt.Errorf("update road lengths: %w", err)
	}

	cacheDelete(ctx, s.cache, roadCacheKey(id))
	publish(ctx, s.publisher, domain.KindRoad, domain.ActionUpdated, road.ID, road.CityID)
	return true, nil
}

// Invalidate drops the cached copy of a road.
func (s *RoadService) Invalidate(ctx context.Context, id string) {
	cacheDelete(ctx, s.cache, roadCacheKey(id))
}

func setRoadGeometry(road *domain.Road, coords []geospatial.Coordinate) error {
	wkt, ok := geospatial.LineStringWKT(coords)
	if !ok {
		return ErrTooFewCoordinates
	}
	road.Geometry = wkt
	road.SegmentLengths = geospatial.SegmentLengths(coords)
	return nil
}
