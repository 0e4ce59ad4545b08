package geospatial

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// invalidCoordinate fails IsFinite, so every caller that filters on it
// drops the entry.
var invalidCoordinate = Coordinate{math.NaN(), math.NaN()}

// UnmarshalJSON accepts a [lon, lat, ...] array or an object carrying
// lon/longitude and lat/latitude. null, short arrays and non-numeric
// members decode to a non-finite Coordinate instead of [0, 0].
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	*c = invalidCoordinate

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case []any:
		if len(v) < 2 {
			return nil
		}
		lon, okLon := jsonFloat(v[0])
		lat, okLat := jsonFloat(v[1])
		if okLon && okLat {
			*c = NewCoordinate(lon, lat)
		}
	case map[string]any:
		lon, okLon := jsonFloat(firstKey(v, "lon", "longitude"))
		lat, okLat := jsonFloat(firstKey(v, "lat", "latitude"))
		if okLon && okLat {
			*c = NewCoordinate(lon, lat)
		}
	}
	return nil
}

func firstKey(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// jsonFloat reads a JSON number or a numeric string.
func jsonFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// geoJSONPoint is the GeoJSON geometry object for a single position.
type geoJSONPoint struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"` // [Lon, Lat]
}

// parseGeoJSONPoint reads {"type":"Point","coordinates":[lon, lat, ...]}.
func parseGeoJSONPoint(s string) (Coordinate, bool) {
	var g geoJSONPoint
	if err := json.Unmarshal([]byte(s), &g); err != nil {
		return Coordinate{}, false
	}
	if !strings.EqualFold(g.Type, "Point") || len(g.Coordinates) < 2 {
		return Coordinate{}, false
	}
	c := NewCoordinate(g.Coordinates[0], g.Coordinates[1])
	return c, c.IsFinite()
}

// PointGeometry is a point geometry field that arrives either as a WKT/EWKT
// string or as a GeoJSON Point object. Objects are kept as their JSON text;
// ParsePointInput understands both.
type PointGeometry string

// UnmarshalJSON implements json.Unmarshaler.
func (g *PointGeometry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*g = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = PointGeometry(s)
	default:
		*g = PointGeometry(data)
	}
	return nil
}
