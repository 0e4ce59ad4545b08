package usecases_test

import (
	"math"
	"testing"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

func TestGeometryService_Distance(t *testing.T) {
	svc := usecases.NewGeometryService()

	res := svc.Distance(geospatial.NewCoordinate(0, 0), geospatial.NewCoordinate(0, 1))
	if math.Abs(res.Meters-111195) > 1 {
		t.Errorf("expected ~111195 m, got %v", res.Meters)
	}
	if res.Formatted != "111.2 km" {
		t.Errorf("expected 111.2 km, got %q", res.Formatted)
	}
}

func TestGeometryService_ParseText(t *testing.T) {
	svc := usecases.NewGeometryService()

	sum := svc.ParseText("0,0\nnot a coordinate\n0,1")
	if len(sum.Coordinates) != 2 {
		t.Fatalf("expected 2 coordinates, got %v", sum.Coordinates)
	}
	if sum.Dropped != 1 {
		t.Errorf("expected 1 dropped line, got %d", sum.Dropped)
	}
	if len(sum.SegmentLengths) != 1 || len(sum.Segments) != 1 {
		t.Errorf("expected one segment, got %v / %v", sum.SegmentLengths, sum.Segments)
	}
	if sum.WKT != "SRID=4326;LINESTRING(0 0, 0 1)" {
		t.Errorf("unexpected wkt %q", sum.WKT)
	}
	if sum.EditText != "0 0\n0 1" {
		t.Errorf("unexpected edit text %q", sum.EditText)
	}
	if sum.Bounds == nil || sum.Bounds.MaxLat != 1 {
		t.Errorf("unexpected bounds %+v", sum.Bounds)
	}
}

func TestGeometryService_Summarize_DropsNonFinite(t *testing.T) {
	svc := usecases.NewGeometryService()

	sum := svc.Summarize([]geospatial.Coordinate{
		geospatial.NewCoordinate(0, 0),
		geospatial.NewCoordinate(math.NaN(), 1),
		geospatial.NewCoordinate(0, 1),
	})
	if sum.Dropped != 1 || len(sum.Coordinates) != 2 {
		t.Errorf("expected NaN pair to be dropped, got %+v", sum)
	}
}

func TestGeometryService_SinglePoint(t *testing.T) {
	svc := usecases.NewGeometryService()

	sum := svc.ParseText("96.1,16.8")
	if len(sum.SegmentLengths) != 0 {
		t.Errorf("expected no segments, got %v", sum.SegmentLengths)
	}
	if sum.WKT != "" {
		t.Errorf("expected no wkt for a single point, got %q", sum.WKT)
	}
	if sum.TotalFormatted != "0.00 m" {
		t.Errorf("expected 0.00 m, got %q", sum.TotalFormatted)
	}
}

func TestGeometryService_LineString(t *testing.T) {
	svc := usecases.NewGeometryService()

	sum := svc.LineString("LINESTRING(96.150 16.78, 96.16 16.79)")
	if sum.EditText != "96.150 16.78\n96.16 16.79" {
		t.Errorf("edit text must keep raw numbers, got %q", sum.EditText)
	}
	if len(sum.Coordinates) != 2 {
		t.Errorf("expected 2 coordinates, got %v", sum.Coordinates)
	}
}

func TestGeometryService_Point(t *testing.T) {
	svc := usecases.NewGeometryService()

	p := svc.Point("SRID=4326;POINT(96.1 16.8)")
	if p.Lon != "96.1" || p.Lat != "16.8" {
		t.Errorf("unexpected point text %+v", p.PointText)
	}
	if p.Point == nil || p.EWKT != "SRID=4326;POINT(96.1 16.8)" {
		t.Errorf("unexpected parsed point %+v", p)
	}

	empty := svc.Point("nothing here")
	if empty.Lon != "" || empty.Point != nil {
		t.Errorf("expected empty result, got %+v", empty)
	}
}
