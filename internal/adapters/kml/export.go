// Package kml renders city content as KML documents for desktop GIS tools.
package kml

import (
	"fmt"
	"io"
	"strings"

	"github.com/twpayne/go-kml"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// WriteCity writes a KML document holding the city point, one folder of
// location placemarks and one folder of road linestrings. Entries without
// usable geometry are skipped.
func WriteCity(w io.Writer, city *domain.City, locations []domain.Location, roads []domain.Road) error {
	doc := []kml.Element{kml.Name(city.Name.Display())}
	if !city.Description.IsEmpty() {
		doc = append(doc, kml.Description(city.Description.Display()))
	}
	if city.Location != nil {
		doc = append(doc, pointPlacemark(city.Name.Display(), "", city.Location.Coordinate()))
	}

	locFolder := []kml.Element{kml.Name("Locations")}
	for _, l := range locations {
		if l.Location == nil {
			continue
		}
		locFolder = append(locFolder, pointPlacemark(l.Name.Display(), locationDescription(l), l.Location.Coordinate()))
	}

	roadFolder := []kml.Element{kml.Name("Roads")}
	for _, r := range roads {
		coords := r.Coordinates
		if len(coords) == 0 {
			coords = geospatial.ExtractLineStringCoords(r.Geometry)
		}
		if len(coords) < 2 {
			continue
		}
		roadFolder = append(roadFolder, kml.Placemark(
			kml.Name(r.Name.Display()),
			kml.Description(roadDescription(r, coords)),
			kml.LineString(kml.Coordinates(toKML(coords)...)),
		))
	}

	doc = append(doc, kml.Folder(locFolder...), kml.Folder(roadFolder...))
	return kml.KML(kml.Document(doc...)).WriteIndent(w, "", "  ")
}

func pointPlacemark(name, description string, c geospatial.Coordinate) kml.Element {
	children := []kml.Element{kml.Name(name)}
	if description != "" {
		children = append(children, kml.Description(description))
	}
	children = append(children, kml.Point(kml.Coordinates(kml.Coordinate{Lon: c.Lon(), Lat: c.Lat()})))
	return kml.Placemark(children...)
}

func locationDescription(l domain.Location) string {
	var parts []string
	if l.LocationType != "" {
		parts = append(parts, l.LocationType)
	}
	if addr := l.Address.Display(); addr != "" {
		parts = append(parts, addr)
	}
	return strings.Join(parts, " | ")
}

func roadDescription(r domain.Road, coords []geospatial.Coordinate) string {
	lengths := r.SegmentLengths
	if len(lengths) == 0 {
		lengths = geospatial.SegmentLengths(coords)
	}
	desc := fmt.Sprintf("Length: %s", geospatial.FormatDistance(geospatial.SumLengths(lengths)))
	if r.RoadType != "" {
		desc = r.RoadType + " | " + desc
	}
	if r.IsOneway {
		desc += " | one-way"
	}
	return desc
}

func toKML(coords []geospatial.Coordinate) []kml.Coordinate {
	out := make([]kml.Coordinate, len(coords))
	for i, c := range coords {
		out[i] = kml.Coordinate{Lon: c.Lon(), Lat: c.Lat()}
	}
	return out
}
