package geospatial

import (
	"strconv"
	"strings"
)

// DefaultSRID is the spatial reference written into generated EWKT.
const DefaultSRID = 4326

// PointText holds the raw numeric substrings captured from a POINT.
type PointText struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

// IsZero reports whether nothing was captured.
func (p PointText) IsZero() bool {
	return p.Lon == "" && p.Lat == ""
}

// Coordinate parses the captured text. ok is false unless both parts are finite numbers.
func (p PointText) Coordinate() (Coordinate, bool) {
	lon, ok1 := parseFinite(p.Lon)
	lat, ok2 := parseFinite(p.Lat)
	if !ok1 || !ok2 {
		return Coordinate{}, false
	}
	return NewCoordinate(lon, lat), true
}

// ExtractPoint returns the lon/lat text of the first well-formed
// POINT(<lon> <lat>) in wkt. The keyword is matched case-insensitively and
// whitespace is flexible. No match yields an empty PointText.
func ExtractPoint(wkt string) PointText {
	s := &wktScanner{input: wkt}
	for s.seekKeyword("POINT") {
		resume := s.pos
		if lon, lat, ok := s.readPointBody(); ok {
			return PointText{Lon: lon, Lat: lat}
		}
		s.pos = resume
	}
	return PointText{}
}

// ExtractLineStringCoords returns the coordinate pairs of the first
// LINESTRING in wkt. Groups that do not hold two finite numbers are dropped.
func ExtractLineStringCoords(wkt string) []Coordinate {
	coords := []Coordinate{}
	body, ok := lineStringBody(wkt)
	if !ok {
		return coords
	}

	for _, group := range strings.Split(body, ",") {
		if c, ok := parseFields(strings.Fields(group)); ok {
			coords = append(coords, c)
		}
	}
	return coords
}

// FormatLineStringForEdit returns the raw "<lon> <lat>" groups of the first
// LINESTRING in wkt, one per line, for an editable text area.
func FormatLineStringForEdit(wkt string) string {
	body, ok := lineStringBody(wkt)
	if !ok {
		return ""
	}

	lines := make([]string, 0, strings.Count(body, ",")+1)
	for _, group := range strings.Split(body, ",") {
		if trimmed := strings.TrimSpace(group); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// FormatCoordinatesForEdit renders coords as "<lon> <lat>" lines, the same
// shape FormatLineStringForEdit produces.
func FormatCoordinatesForEdit(coords []Coordinate) string {
	var b strings.Builder
	for i, c := range coords {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeCoord(&b, c)
	}
	return b.String()
}

// ParseCoordinateText parses user-typed "lon,lat" lines. Semicolons act as
// line breaks; a line without a comma is split on whitespace instead, so the
// output of FormatLineStringForEdit parses back. Blank and malformed lines
// are skipped.
func ParseCoordinateText(text string) []Coordinate {
	coords := []Coordinate{}
	text = strings.ReplaceAll(text, ";", "\n")

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var parts []string
		if strings.Contains(line, ",") {
			for _, p := range strings.Split(line, ",") {
				if p = strings.TrimSpace(p); p != "" {
					parts = append(parts, p)
				}
			}
		} else {
			parts = strings.Fields(line)
		}

		if c, ok := parseFields(parts); ok {
			coords = append(coords, c)
		}
	}
	return coords
}

// PointWKT renders c as SRID-tagged EWKT.
func PointWKT(c Coordinate) string {
	var b strings.Builder
	b.WriteString(sridPrefix())
	b.WriteString("POINT(")
	writeCoord(&b, c)
	b.WriteByte(')')
	return b.String()
}

// LineStringWKT renders coords as SRID-tagged EWKT. ok is false for fewer
// than two coordinates.
func LineStringWKT(coords []Coordinate) (string, bool) {
	if len(coords) < 2 {
		return "", false
	}

	var b strings.Builder
	b.WriteString(sridPrefix())
	b.WriteString("LINESTRING(")
	for i, c := range coords {
		if i > 0 {
			b.WriteString(", ")
		}
		writeCoord(&b, c)
	}
	b.WriteByte(')')
	return b.String(), true
}

// ParsePointInput resolves point geometry from either explicit lon/lat values
// or a geometry string holding WKT, EWKT or a GeoJSON Point object. Explicit
// values win when both are given and finite.
func ParsePointInput(lon, lat *float64, geometry string) (string, bool) {
	if lon != nil && lat != nil {
		c := NewCoordinate(*lon, *lat)
		if c.IsFinite() {
			return PointWKT(c), true
		}
	}

	cleaned := strings.TrimSpace(geometry)
	if cleaned == "" {
		return "", false
	}
	if cleaned[0] == '{' {
		c, ok := parseGeoJSONPoint(cleaned)
		if !ok {
			return "", false
		}
		return PointWKT(c), true
	}
	if ExtractPoint(cleaned).IsZero() {
		return "", false
	}
	if hasPrefixFold(cleaned, "SRID=") {
		return cleaned, true
	}
	if hasPrefixFold(cleaned, "POINT") {
		return sridPrefix() + cleaned, true
	}
	return "", false
}

func lineStringBody(wkt string) (string, bool) {
	s := &wktScanner{input: wkt}
	for s.seekKeyword("LINESTRING") {
		resume := s.pos
		s.skipWhitespace()
		if s.consume('(') {
			if end := strings.IndexByte(s.input[s.pos:], ')'); end >= 0 {
				return s.input[s.pos : s.pos+end], true
			}
		}
		s.pos = resume
	}
	return "", false
}

func parseFields(parts []string) (Coordinate, bool) {
	if len(parts) < 2 {
		return Coordinate{}, false
	}
	lon, ok := parseFinite(parts[0])
	if !ok {
		return Coordinate{}, false
	}
	lat, ok := parseFinite(parts[1])
	if !ok {
		return Coordinate{}, false
	}
	return NewCoordinate(lon, lat), true
}

func parseFinite(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !isFinite(v) {
		return 0, false
	}
	return v, true
}

func sridPrefix() string {
	return "SRID=" + strconv.Itoa(DefaultSRID) + ";"
}

func writeCoord(b *strings.Builder, c Coordinate) {
	b.WriteString(strconv.FormatFloat(c.Lon(), 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(c.Lat(), 'f', -1, 64))
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && asciiEqualFold(s[:len(prefix)], prefix)
}

// wktScanner walks WKT text byte by byte.
type wktScanner struct {
	input string
	pos   int
}

// seekKeyword moves past the next case-insensitive occurrence of kw.
func (s *wktScanner) seekKeyword(kw string) bool {
	for i := s.pos; i+len(kw) <= len(s.input); i++ {
		if asciiEqualFold(s.input[i:i+len(kw)], kw) {
			s.pos = i + len(kw)
			return true
		}
	}
	s.pos = len(s.input)
	return false
}

// readPointBody reads "( <num> <num> )".
func (s *wktScanner) readPointBody() (string, string, bool) {
	s.skipWhitespace()
	if !s.consume('(') {
		return "", "", false
	}
	s.skipWhitespace()
	lon := s.readNumber()
	if lon == "" || s.skipWhitespace() == 0 {
		return "", "", false
	}
	lat := s.readNumber()
	if lat == "" {
		return "", "", false
	}
	s.skipWhitespace()
	if !s.consume(')') {
		return "", "", false
	}
	return lon, lat, true
}

func (s *wktScanner) readNumber() string {
	start := s.pos
	for s.pos < len(s.input) && isNumberByte(s.input[s.pos]) {
		s.pos++
	}
	return s.input[start:s.pos]
}

func (s *wktScanner) skipWhitespace() int {
	start := s.pos
	for s.pos < len(s.input) {
		switch s.input[s.pos] {
		case ' ', '\t', '\n', '\r':
			s.pos++
		default:
			return s.pos - start
		}
	}
	return s.pos - start
}

func (s *wktScanner) consume(ch byte) bool {
	if s.pos < len(s.input) && s.input[s.pos] == ch {
		s.pos++
		return true
	}
	return false
}

func isNumberByte(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

func asciiEqualFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'a' <= ca && ca <= 'z' {
			ca -= 'a' - 'A'
		}
		if 'a' <= cb && cb <= 'z' {
			cb -= 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
