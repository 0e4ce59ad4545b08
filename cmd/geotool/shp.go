package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

// nameFields are the attribute columns tried, in order, for a shape's name.
var nameFields = []string{"NAME", "NAME_EN", "NAME_MM", "NAMEASCII"}

// ShpCommand lists the polylines and points of a shapefile.
type ShpCommand struct {
	Args struct {
		Path string `positional-arg-name:"FILE.shp"`
	} `positional-args:"yes" required:"yes"`
}

// shapeInfo is one polyline part or point read from a shapefile.
type shapeInfo struct {
	Index     int       `json:"index"`
	Part      int       `json:"part,omitempty"`
	Kind      string    `json:"kind"`
	Name      string    `json:"name,omitempty"`
	WKT       string    `json:"wkt"`
	Points    int       `json:"points"`
	Lengths   []float64 `json:"length_m,omitempty"`
	Total     float64   `json:"total_length_m,omitempty"`
	Formatted string    `json:"total_formatted,omitempty"`
}

func (c *ShpCommand) Execute([]string) error {
	shapes, err := readShapes(c.Args.Path)
	if err != nil {
		return err
	}

	return emit(shapes, func(w io.Writer) {
		for _, s := range shapes {
			label := s.Name
			if label == "" {
				label = "-"
			}
			if s.Kind == "point" {
				fmt.Fprintf(w, "%d  point  %s  %s\n", s.Index, label, s.WKT)
				continue
			}
			fmt.Fprintf(w, "%d.%d  linestring  %s  %s  %s\n", s.Index, s.Part, label, s.Formatted, s.WKT)
		}
	})
}

// readShapes reads every polyline part and point in the shapefile at path.
// Other shape types are skipped.
func readShapes(path string) ([]shapeInfo, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	defer reader.Close()

	nameIdx := nameColumn(reader.Fields())

	shapes := []shapeInfo{}
	skipped := 0
	for reader.Next() {
		n, shape := reader.Shape()

		name := ""
		if nameIdx >= 0 {
			name = strings.TrimSpace(strings.TrimRight(reader.ReadAttribute(n, nameIdx), "\x00"))
		}

		switch geom := shape.(type) {
		case *shp.PolyLine:
			for part, pts := range splitParts(geom.Parts, geom.Points) {
				coords := make([]geospatial.Coordinate, len(pts))
				for i, p := range pts {
					coords[i] = geospatial.NewCoordinate(p.X, p.Y)
				}
				wkt, ok := geospatial.LineStringWKT(coords)
				if !ok {
					skipped++
					continue
				}
				lengths := geospatial.SegmentLengths(coords)
				total := geospatial.SumLengths(lengths)
				shapes = append(shapes, shapeInfo{
					Index:     n,
					Part:      part,
					Kind:      "linestring",
					Name:      name,
					WKT:       wkt,
					Points:    len(coords),
					Lengths:   lengths,
					Total:     total,
					Formatted: geospatial.FormatDistance(total),
				})
			}
		case *shp.Point:
			shapes = append(shapes, shapeInfo{
				Index:  n,
				Kind:   "point",
				Name:   name,
				WKT:    geospatial.PointWKT(geospatial.NewCoordinate(geom.X, geom.Y)),
				Points: 1,
			})
		default:
			skipped++
		}
	}
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("read shapefile: %w", err)
	}

	if skipped > 0 {
		cur.logger.Warn("skipped unsupported shapes", "path", path, "skipped", skipped)
	}
	return shapes, nil
}

func nameColumn(fields []shp.Field) int {
	for _, want := range nameFields {
		for i, f := range fields {
			if strings.EqualFold(strings.TrimRight(string(f.Name[:]), "\x00 "), want) {
				return i
			}
		}
	}
	return -1
}

// splitParts cuts points into the parts a polyline record declares.
func splitParts(parts []int32, points []shp.Point) [][]shp.Point {
	if len(parts) == 0 {
		return [][]shp.Point{points}
	}
	out := make([][]shp.Point, 0, len(parts))
	for i, start := range parts {
		end := int32(len(points))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		if start < 0 || start > end || int(end) > len(points) {
			continue
		}
		out = append(out, points[start:end])
	}
	return out
}
