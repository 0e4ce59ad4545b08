package kml

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yangonmaps/citymap/internal/core/domain"
)

func TestWriteCity(t *testing.T) {
	city := &domain.City{
		Name:        domain.LocalizedText{EN: "Yangon"},
		Description: domain.LocalizedText{MM: "ရန်ကုန်"},
		Location:    &domain.GeoPoint{Lat: 16.8409, Lon: 96.1561},
	}
	locations := []domain.Location{
		{Name: domain.LocalizedText{EN: "Sule Pagoda"}, LocationType: "pagoda", Location: &domain.GeoPoint{Lat: 16.7745, Lon: 96.1588}},
		{Name: domain.LocalizedText{EN: "No geometry"}},
	}
	roads := []domain.Road{
		{Name: domain.LocalizedText{EN: "Pyay Road"}, RoadType: "primary", Geometry: "LINESTRING(96.13 16.80, 96.14 16.81)"},
		{Name: domain.LocalizedText{EN: "Stub"}, Geometry: "LINESTRING(96.13 16.80)"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCity(&buf, city, locations, roads))
	out := buf.String()

	assert.True(t, xml.Unmarshal(buf.Bytes(), new(struct{})) == nil, "output must be well-formed XML")
	assert.Contains(t, out, "<name>Yangon</name>")
	assert.Contains(t, out, "96.1561")
	assert.Contains(t, out, "<name>Sule Pagoda</name>")
	assert.Contains(t, out, "pagoda")
	assert.Contains(t, out, "<name>Pyay Road</name>")
	assert.Contains(t, out, "<LineString>")
	assert.NotContains(t, out, "No geometry")
	assert.NotContains(t, out, "<name>Stub</name>")
	assert.Equal(t, 3, strings.Count(out, "<Placemark>"))
}

func TestRoadDescription(t *testing.T) {
	r := domain.Road{RoadType: "primary", IsOneway: true, SegmentLengths: []float64{600, 640}}
	assert.Equal(t, "primary | Length: 1.24 km | one-way", roadDescription(r, nil))
}
