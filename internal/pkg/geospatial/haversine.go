// Package geospatial holds the pure geometry helpers shared by the API,
// the worker and the geotool CLI: great-circle distances, polyline segment
// lengths, distance formatting and WKT extraction.
package geospatial

import "math"

// EarthRadiusMeters is the mean Earth radius used by Distance.
const EarthRadiusMeters = 6_371_000

// Coordinate is a [lon, lat] pair in degrees.
type Coordinate [2]float64

// NewCoordinate builds a Coordinate from longitude and latitude.
func NewCoordinate(lon, lat float64) Coordinate {
	return Coordinate{lon, lat}
}

// Lon returns the longitude.
func (c Coordinate) Lon() float64 { return c[0] }

// Lat returns the latitude.
func (c Coordinate) Lat() float64 { return c[1] }

// IsFinite reports whether both components are finite numbers.
func (c Coordinate) IsFinite() bool {
	return isFinite(c[0]) && isFinite(c[1])
}

// Distance returns the great-circle distance in meters between start and end,
// rounded to two decimals. Non-finite input yields NaN.
func Distance(start, end Coordinate) float64 {
	lat1 := toRad(start.Lat())
	lat2 := toRad(end.Lat())
	dLat := toRad(end.Lat() - start.Lat())
	dLon := toRad(end.Lon() - start.Lon())

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return round2(EarthRadiusMeters * c)
}

// SegmentLengths returns the length in meters of every consecutive segment of
// the polyline. Fewer than two coordinates yield an empty slice.
func SegmentLengths(coords []Coordinate) []float64 {
	if len(coords) < 2 {
		return []float64{}
	}

	lengths := make([]float64, 0, len(coords)-1)
	for i := 0; i < len(coords)-1; i++ {
		lengths = append(lengths, Distance(coords[i], coords[i+1]))
	}
	return lengths
}

// TotalLength sums the segment lengths of the polyline.
func TotalLength(coords []Coordinate) float64 {
	return SumLengths(SegmentLengths(coords))
}

// SumLengths adds up segment lengths, rounded to two decimals.
func SumLengths(lengths []float64) float64 {
	var total float64
	for _, l := range lengths {
		total += l
	}
	return round2(total)
}

// BoundingBox returns a bounding box around a point with the given radius in meters.
func BoundingBox(lat, lon, radiusMeters float64) (minLat, minLon, maxLat, maxLon float64) {
	latDelta := radiusMeters / 111320.0
	lonDelta := radiusMeters / (111320.0 * math.Cos(toRad(lat)))

	return lat - latDelta, lon - lonDelta, lat + latDelta, lon + lonDelta
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
