package usecases

import (
	"strings"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// PlaceInput carries the fields shared by cities and locations. On update,
// nil fields leave the stored value untouched.
type PlaceInput struct {
	UserID      string
	Name        *domain.LocalizedText
	Address     *domain.LocalizedText
	Description *domain.LocalizedText
	ImageURLs   []string
	Lon         *float64
	Lat         *float64
	Geometry    string // WKT or EWKT point
	IsActive    *bool
}

func (in PlaceInput) hasGeometry() bool {
	return (in.Lon != nil && in.Lat != nil) || strings.TrimSpace(in.Geometry) != ""
}

// place points at the mutable fields of a City or Location.
type place struct {
	name, address, description *domain.LocalizedText
	imageURLs                  *[]string
	geometry                   *string
	location                   **domain.GeoPoint
	isActive                   *bool
}

// apply copies the set fields of in onto p. requireAll enforces the
// create-time rules.
func (in PlaceInput) apply(p place, requireAll bool) (changed bool, err error) {
	if requireAll || in.Name != nil {
		if in.Name == nil || in.Name.IsEmpty() {
			return false, ErrNameRequired
		}
		*p.name = *in.Name
		changed = true
	}

	if requireAll || in.hasGeometry() {
		wkt, ok := geospatial.ParsePointInput(in.Lon, in.Lat, in.Geometry)
		if !ok {
			return false, ErrInvalidGeometry
		}
		*p.geometry = wkt
		*p.location = domain.GeoPointFromWKT(wkt)
		changed = true
	}

	if mergeText(p.address, in.Address) {
		changed = true
	}
	if mergeText(p.description, in.Description) {
		changed = true
	}
	if in.ImageURLs != nil {
		*p.imageURLs = in.ImageURLs
		changed = true
	}
	if *p.imageURLs == nil {
		*p.imageURLs = []string{}
	}
	if in.IsActive != nil {
		*p.isActive = *in.IsActive
		changed = true
	}
	return changed, nil
}
