package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/yangonmaps/citymap/internal/core/usecases"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

var (
	errNoCoordinate  = errors.New("expected a lon,lat coordinate")
	errMissingPoints = errors.New("distance needs a start and an end point")
)

// parseOne reads a single "lon,lat" (or "lon lat") coordinate.
func parseOne(s string) (geospatial.Coordinate, error) {
	coords := geospatial.ParseCoordinateText(s)
	if len(coords) != 1 {
		return geospatial.Coordinate{}, fmt.Errorf("%w: %q", errNoCoordinate, s)
	}
	return coords[0], nil
}

// readInput returns the contents of path, or stdin when path is empty or "-".
func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(cur.stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// DistanceCommand measures the distance between two points. A point with a
// negative longitude looks like a short option, so it goes after "--" or
// into --from=/--to=.
type DistanceCommand struct {
	From string `long:"from" value-name:"LON,LAT" description:"Start point; use --from=-2.935,43.26 for negative values"`
	To   string `long:"to" value-name:"LON,LAT" description:"End point"`
	Args struct {
		Start string `positional-arg-name:"START" description:"lon,lat"`
		End   string `positional-arg-name:"END" description:"lon,lat"`
	} `positional-args:"yes"`
}

// Usage implements flags.Usage.
func (c *DistanceCommand) Usage() string {
	return "[--from=LON,LAT --to=LON,LAT | [--] START END]"
}

func (c *DistanceCommand) Execute([]string) error {
	startText, endText := c.Args.Start, c.Args.End
	if c.From != "" || c.To != "" {
		startText, endText = c.From, c.To
	}
	if startText == "" || endText == "" {
		return errMissingPoints
	}

	start, err := parseOne(startText)
	if err != nil {
		return err
	}
	end, err := parseOne(endText)
	if err != nil {
		return err
	}

	res := cur.geo.Distance(start, end)
	return emit(res, func(w io.Writer) {
		fmt.Fprintf(w, "%s (%s m)\n", res.Formatted, strconv.FormatFloat(res.Meters, 'f', -1, 64))
	})
}

// SegmentsCommand measures every segment of a coordinate list.
type SegmentsCommand struct {
	File string `short:"i" long:"in" description:"Coordinate text file, one lon,lat per line. Reads stdin if empty"`
}

func (c *SegmentsCommand) Execute([]string) error {
	text, err := readInput(c.File)
	if err != nil {
		return err
	}

	sum := cur.geo.ParseText(text)
	if sum.Dropped > 0 {
		cur.logger.Warn("skipped malformed coordinate lines", "dropped", sum.Dropped)
	}
	return emit(sum, func(w io.Writer) { writeSummary(w, sum) })
}

// FormatCommand renders a distance in meters.
type FormatCommand struct {
	Args struct {
		Meters string `positional-arg-name:"METERS"`
	} `positional-args:"yes" required:"yes"`
}

func (c *FormatCommand) Execute([]string) error {
	meters, err := strconv.ParseFloat(strings.TrimSpace(c.Args.Meters), 64)
	if err != nil {
		cur.logger.Debug("not a number", "value", c.Args.Meters)
		meters = math.NaN()
	}

	out := struct {
		Meters    string `json:"meters"`
		Formatted string `json:"formatted"`
	}{c.Args.Meters, cur.geo.Format(meters)}
	return emit(out, func(w io.Writer) { fmt.Fprintln(w, out.Formatted) })
}

// WKTCommand reads the first POINT or LINESTRING of a WKT string.
type WKTCommand struct {
	Args struct {
		WKT string `positional-arg-name:"WKT" description:"POINT or LINESTRING, optionally SRID-prefixed"`
	} `positional-args:"yes" required:"yes"`
}

func (c *WKTCommand) Execute([]string) error {
	wkt := c.Args.WKT
	if strings.Contains(strings.ToUpper(wkt), "LINESTRING") {
		sum := cur.geo.LineString(wkt)
		if len(sum.Coordinates) == 0 {
			return fmt.Errorf("no LINESTRING coordinates in %q", wkt)
		}
		return emit(sum, func(w io.Writer) { writeSummary(w, sum) })
	}

	pt := cur.geo.Point(wkt)
	if pt.IsZero() {
		return fmt.Errorf("no POINT in %q", wkt)
	}
	return emit(pt, func(w io.Writer) {
		fmt.Fprintf(w, "lon %s, lat %s\n", pt.Lon, pt.Lat)
		if pt.EWKT != "" {
			fmt.Fprintln(w, pt.EWKT)
		}
	})
}

// PolylineCommand converts between coordinate text and encoded polylines.
type PolylineCommand struct {
	Decode string `short:"d" long:"decode" description:"Encoded polyline to decode"`
	File   string `short:"i" long:"in" description:"Coordinate text to encode. Reads stdin if empty"`
}

func (c *PolylineCommand) Execute([]string) error {
	var sum usecases.PolylineSummary
	if c.Decode != "" {
		coords, err := geospatial.DecodePolyline(c.Decode)
		if err != nil {
			return fmt.Errorf("decode polyline: %w", err)
		}
		sum = cur.geo.Summarize(coords)
	} else {
		text, err := readInput(c.File)
		if err != nil {
			return err
		}
		sum = cur.geo.ParseText(text)
	}

	return emit(sum, func(w io.Writer) {
		if c.Decode != "" {
			fmt.Fprint(w, sum.EditText)
			if !strings.HasSuffix(sum.EditText, "\n") {
				fmt.Fprintln(w)
			}
			return
		}
		fmt.Fprintln(w, sum.EncodedPolyline)
	})
}

func writeSummary(w io.Writer, sum usecases.PolylineSummary) {
	for i, s := range sum.Segments {
		fmt.Fprintf(w, "%3d  %s\n", i+1, s)
	}
	fmt.Fprintf(w, "total %s over %d points\n", sum.TotalFormatted, len(sum.Coordinates))
	if sum.WKT != "" {
		fmt.Fprintln(w, sum.WKT)
	}
}
