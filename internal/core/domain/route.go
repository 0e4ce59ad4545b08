package domain

import "github.com/yangonmaps/citymap/internal/pkg/geospatial"

// Route segment types.
const (
	SegmentRoad       = "road"
	SegmentUserToRoad = "user_to_road"
	SegmentRoadToUser = "road_to_user"
)

// Route endpoint types.
const (
	EndpointDefinedLocation = "defined_location"
	EndpointUserInput       = "user_input"
)

// RouteSegment is one leg of a planned route: a stretch along a single road,
// or the walk between a requested point and the road network.
type RouteSegment struct {
	Type            string        `json:"type"`
	RoadID          string        `json:"road_id,omitempty"`
	Name            LocalizedText `json:"name"`
	Length          float64       `json:"length_m"`
	LengthFormatted string        `json:"length_formatted"`
}

// RouteEndpoint describes where a route starts or ends. A defined location
// is reported when one lies close to the requested point.
type RouteEndpoint struct {
	Type       string         `json:"type"`
	LocationID string         `json:"location_id,omitempty"`
	Name       *LocalizedText `json:"name,omitempty"`
	Address    *LocalizedText `json:"address,omitempty"`
	Lon        float64        `json:"longitude"`
	Lat        float64        `json:"latitude"`
}

// Route is the shortest road path between two points.
type Route struct {
	Coordinates      []geospatial.Coordinate `json:"coordinates"`
	Segments         []RouteSegment          `json:"segments"`
	TotalDistance    float64                 `json:"total_distance_m"`
	TotalFormatted   string                  `json:"total_formatted"`
	EstimatedSeconds float64                 `json:"estimated_time_s"`
	EncodedPolyline  string                  `json:"encoded_polyline"`
	Bounds           *Bounds                 `json:"bounds,omitempty"`
	Start            RouteEndpoint           `json:"start_location"`
	End              RouteEndpoint           `json:"end_location"`
}
