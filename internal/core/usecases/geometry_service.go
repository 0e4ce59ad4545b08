package usecases

import (
	"strings"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// DistanceResult is a measured distance with its display form.
type DistanceResult struct {
	Meters    float64 `json:"meters"`
	Formatted string  `json:"formatted"`
}

// PolylineSummary describes a polyline the way the road editor previews it.
type PolylineSummary struct {
	Coordinates     []geospatial.Coordinate `json:"coordinates"`
	SegmentLengths  []float64               `json:"length_m"`
	Segments        []string                `json:"segments_formatted"`
	TotalLength     float64                 `json:"total_length_m"`
	TotalFormatted  string                  `json:"total_formatted"`
	WKT             string                  `json:"wkt,omitempty"`
	EditText        string                  `json:"edit_text"`
	EncodedPolyline string                  `json:"encoded_polyline,omitempty"`
	Bounds          *domain.Bounds          `json:"bounds,omitempty"`
	Dropped         int                     `json:"dropped,omitempty"`
}

// PointSummary is the result of reading a POINT out of WKT.
type PointSummary struct {
	geospatial.PointText
	Point *geospatial.Coordinate `json:"coordinate,omitempty"`
	EWKT  string                 `json:"ewkt,omitempty"`
}

// GeometryService exposes the geometry helpers to the transports.
type GeometryService struct{}

// NewGeometryService creates a new GeometryService.
func NewGeometryService() *GeometryService {
	return &GeometryService{}
}

// Distance measures the great-circle distance between two coordinates.
func (s *GeometryService) Distance(start, end geospatial.Coordinate) DistanceResult {
	m := geospatial.Distance(start, end)
	return DistanceResult{Meters: m, Formatted: geospatial.FormatDistance(m)}
}

// Format renders meters for display.
func (s *GeometryService) Format(meters float64) string {
	return geospatial.FormatDistance(meters)
}

// Summarize measures a polyline.
func (s *GeometryService) Summarize(coords []geospatial.Coordinate) PolylineSummary {
	finite := make([]geospatial.Coordinate, 0, len(coords))
	for _, c := range coords {
		if c.IsFinite() {
			finite = append(finite, c)
		}
	}

	sum := summarize(finite)
	sum.Dropped = len(coords) - len(finite)
	return sum
}

// ParseText parses editable coordinate text and measures the result.
func (s *GeometryService) ParseText(text string) PolylineSummary {
	coords := geospatial.ParseCoordinateText(text)
	sum := summarize(coords)
	sum.Dropped = countCoordinateLines(text) - len(coords)
	return sum
}

// LineString reads the first LINESTRING out of wkt and measures it.
func (s *GeometryService) LineString(wkt string) PolylineSummary {
	sum := summarize(geospatial.ExtractLineStringCoords(wkt))
	sum.EditText = geospatial.FormatLineStringForEdit(wkt)
	return sum
}

// Point reads the first POINT out of wkt.
func (s *GeometryService) Point(wkt string) PointSummary {
	text := geospatial.ExtractPoint(wkt)
	out := PointSummary{PointText: text}
	if c, ok := text.Coordinate(); ok {
		out.Point = &c
		out.EWKT = geospatial.PointWKT(c)
	}
	return out
}

func summarize(coords []geospatial.Coordinate) PolylineSummary {
	lengths := geospatial.SegmentLengths(coords)
	formatted := make([]string, len(lengths))
	for i, l := range lengths {
		formatted[i] = geospatial.FormatDistance(l)
	}

	total := geospatial.SumLengths(lengths)
	wkt, _ := geospatial.LineStringWKT(coords)

	return PolylineSummary{
		Coordinates:     coords,
		SegmentLengths:  lengths,
		Segments:        formatted,
		TotalLength:     total,
		TotalFormatted:  geospatial.FormatDistance(total),
		WKT:             wkt,
		EditText:        geospatial.FormatCoordinatesForEdit(coords),
		EncodedPolyline: geospatial.EncodePolyline(coords),
		Bounds:          domain.BoundsOf(coords),
	}
}

func countCoordinateLines(text string) int {
	n := 0
	for _, line := range strings.Split(strings.ReplaceAll(text, ";", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
