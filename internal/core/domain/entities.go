package domain

import (
	"strings"
	"time"

	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// LocalizedText is a Burmese/English text pair.
type LocalizedText struct {
	MM string `json:"mm"`
	EN string `json:"en"`
}

// IsEmpty reports whether neither language has a value.
func (t LocalizedText) IsEmpty() bool {
	return strings.TrimSpace(t.MM) == "" && strings.TrimSpace(t.EN) == ""
}

// Display returns the English text, falling back to Burmese.
func (t LocalizedText) Display() string {
	if strings.TrimSpace(t.EN) != "" {
		return t.EN
	}
	return t.MM
}

// City is a municipality with its own locations and roads.
type City struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id,omitempty"`
	Name        LocalizedText `json:"name"`
	Address     LocalizedText `json:"address"`
	Description LocalizedText `json:"description"`
	ImageURLs   []string      `json:"image_urls"`
	Geometry    string        `json:"geometry,omitempty"` // WKT
	Location    *GeoPoint     `json:"location,omitempty"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// CityDetail is a titled content block shown on a city page.
type CityDetail struct {
	ID              string        `json:"id"`
	CityID          string        `json:"city_id"`
	UserID          string        `json:"user_id,omitempty"`
	PredefinedTitle string        `json:"predefined_title"`
	Subtitle        LocalizedText `json:"subtitle"`
	Body            LocalizedText `json:"body"`
	ImageURLs       []string      `json:"image_urls"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Location is a point of interest inside a city.
type Location struct {
	ID           string        `json:"id"`
	CityID       string        `json:"city_id"`
	UserID       string        `json:"user_id,omitempty"`
	Name         LocalizedText `json:"name"`
	Address      LocalizedText `json:"address"`
	Description  LocalizedText `json:"description"`
	ImageURLs    []string      `json:"image_urls"`
	LocationType string        `json:"location_type,omitempty"`
	Geometry     string        `json:"geometry,omitempty"` // WKT
	Location     *GeoPoint     `json:"location,omitempty"`
	IsActive     bool          `json:"is_active"`
	Distance     *float64      `json:"distance,omitempty"` // computed field
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Road is a polyline inside a city with per-segment lengths in meters.
type Road struct {
	ID              string                  `json:"id"`
	CityID          string                  `json:"city_id"`
	UserID          string                  `json:"user_id,omitempty"`
	Name            LocalizedText           `json:"name"`
	RoadType        string                  `json:"road_type,omitempty"`
	IsOneway        bool                    `json:"is_oneway"`
	SegmentLengths  []float64               `json:"length_m"`
	TotalLength     float64                 `json:"total_length_m"`
	Geometry        string                  `json:"geometry,omitempty"` // WKT
	Coordinates     []geospatial.Coordinate `json:"coordinates"`
	EncodedPolyline string                  `json:"encoded_polyline,omitempty"`
	IsActive        bool                    `json:"is_active"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// Decorate fills the fields derived from Geometry and SegmentLengths.
func (r *Road) Decorate() {
	r.Coordinates = geospatial.ExtractLineStringCoords(r.Geometry)
	if len(r.SegmentLengths) == 0 && len(r.Coordinates) > 1 {
		r.SegmentLengths = geospatial.SegmentLengths(r.Coordinates)
	}
	if r.SegmentLengths == nil {
		r.SegmentLengths = []float64{}
	}
	r.TotalLength = geospatial.SumLengths(r.SegmentLengths)
	r.EncodedPolyline = geospatial.EncodePolyline(r.Coordinates)
}

// ContentKind names the entity a ContentEvent refers to.
type ContentKind string

const (
	KindCity       ContentKind = "city"
	KindCityDetail ContentKind = "city_detail"
	KindLocation   ContentKind = "location"
	KindRoad       ContentKind = "road"
)

// ContentAction names the mutation a ContentEvent records.
type ContentAction string

const (
	ActionCreated ContentAction = "created"
	ActionUpdated ContentAction = "updated"
	ActionDeleted ContentAction = "deleted"
)

// ContentEvent is published after every content mutation.
type ContentEvent struct {
	Kind   ContentKind   `json:"kind"`
	Action ContentAction `json:"action"`
	ID     string        `json:"id"`
	CityID string        `json:"city_id,omitempty"`
	At     time.Time     `json:"at"`
}

// Subject returns the broker subject for the event, e.g. "content.road.updated".
func (e ContentEvent) Subject() string {
	return "content." + string(e.Kind) + "." + string(e.Action)
}
