package ports

import (
	"context"

	"github.com/yangonmaps/citymap/internal/core/domain"
)

// ListFilter narrows list queries.
type ListFilter struct {
	CityID     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Page is one slice of a list together with the unpaged total.
type Page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

// CityRepository persists cities.
type CityRepository interface {
	Create(ctx context.Context, city *domain.City) error
	Update(ctx context.Context, city *domain.City) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.City, error)
	List(ctx context.Context, filter ListFilter) (Page[domain.City], error)
}

// CityDetailRepository persists city content blocks.
type CityDetailRepository interface {
	Create(ctx context.Context, detail *domain.CityDetail) error
	Update(ctx context.Context, detail *domain.CityDetail) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.CityDetail, error)
	List(ctx context.Context, filter ListFilter) (Page[domain.CityDetail], error)
}

// LocationRepository persists points of interest.
type LocationRepository interface {
	Create(ctx context.Context, loc *domain.Location) error
	Update(ctx context.Context, loc *domain.Location) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Location, error)
	List(ctx context.Context, filter ListFilter) (Page[domain.Location], error)
	FindNearby(ctx context.Context, lat, lon, radiusMeters float64, limit int) ([]domain.Location, error)
}

// RoadRepository persists roads.
type RoadRepository interface {
	Create(ctx context.Context, road *domain.Road) error
	Update(ctx context.Context, road *domain.Road) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Road, error)
	List(ctx context.Context, filter ListFilter) (Page[domain.Road], error)
	UpdateLengths(ctx context.Context, id string, lengths []float64) error
}

// RouteGraphRepository loads the road network used for route planning.
type RouteGraphRepository interface {
	// ListRoutable returns every active road with its geometry, segment
	// lengths and direction. Only ID, Name, IsOneway, SegmentLengths and
	// Geometry are filled.
	ListRoutable(ctx context.Context) ([]domain.Road, error)
}
