package domain

import "github.com/yangonmaps/citymap/internal/pkg/geospatial"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Coordinate returns the point as a [lon, lat] pair.
func (p GeoPoint) Coordinate() geospatial.Coordinate {
	return geospatial.NewCoordinate(p.Lon, p.Lat)
}

// GeoPointFromWKT reads the first POINT in wkt. It returns nil when there is none.
func GeoPointFromWKT(wkt string) *GeoPoint {
	c, ok := geospatial.ExtractPoint(wkt).Coordinate()
	if !ok {
		return nil
	}
	return &GeoPoint{Lat: c.Lat(), Lon: c.Lon()}
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsOf returns the bounding box of coords, or nil for an empty slice.
func BoundsOf(coords []geospatial.Coordinate) *Bounds {
	if len(coords) == 0 {
		return nil
	}

	b := &Bounds{
		MinLat: coords[0].Lat(), MaxLat: coords[0].Lat(),
		MinLon: coords[0].Lon(), MaxLon: coords[0].Lon(),
	}
	for _, c := range coords[1:] {
		b.MinLat = min(b.MinLat, c.Lat())
		b.MaxLat = max(b.MaxLat, c.Lat())
		b.MinLon = min(b.MinLon, c.Lon())
		b.MaxLon = max(b.MaxLon, c.Lon())
	}
	return b
}
