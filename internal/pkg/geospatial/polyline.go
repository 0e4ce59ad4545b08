package geospatial

import (
	"fmt"

	"github.com/twpayne/go-polyline"
)

// EncodePolyline encodes coords with Google's polyline algorithm.
func EncodePolyline(coords []Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	latLngs := make([][]float64, len(coords))
	for i, c := range coords {
		latLngs[i] = []float64{c.Lat(), c.Lon()}
	}
	return string(polyline.EncodeCoords(latLngs))
}

// DecodePolyline decodes a Google encoded polyline into [lon, lat] pairs.
func DecodePolyline(encoded string) ([]Coordinate, error) {
	if encoded == "" {
		return nil, fmt.Errorf("encoded polyline is empty")
	}

	latLngs, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}

	coords := make([]Coordinate, len(latLngs))
	for i, ll := range latLngs {
		coords[i] = NewCoordinate(ll[1], ll[0])
	}
	return coords, nil
}
