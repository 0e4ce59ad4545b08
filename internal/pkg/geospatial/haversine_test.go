package geospatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name  string
		start Coordinate
		end   Coordinate
		want  float64
		delta float64
	}{
		{"same point", NewCoordinate(96.1561, 16.7805), NewCoordinate(96.1561, 16.7805), 0, 0},
		{"one degree of latitude on the meridian", NewCoordinate(0, 0), NewCoordinate(0, 1), 111195, 1},
		{"one degree of longitude on the equator", NewCoordinate(0, 0), NewCoordinate(1, 0), 111195, 1},
		{"Sule Pagoda to Shwedagon", NewCoordinate(96.1561, 16.7745), NewCoordinate(96.1497, 16.7983), 2731, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.start, tt.end)
			assert.InDelta(t, tt.want, got, tt.delta)
		})
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := NewCoordinate(96.1735, 16.8409)
	b := NewCoordinate(96.1285, 16.8661)
	assert.Equal(t, Distance(a, b), Distance(b, a))
}

func TestDistance_RoundedToCentimeters(t *testing.T) {
	d := Distance(NewCoordinate(96.1, 16.8), NewCoordinate(96.2, 16.9))
	assert.InDelta(t, d, math.Round(d*100)/100, 1e-9)
}

func TestDistance_NonFinite(t *testing.T) {
	assert.True(t, math.IsNaN(Distance(NewCoordinate(math.NaN(), 0), NewCoordinate(0, 0))))
	assert.True(t, math.IsNaN(Distance(NewCoordinate(0, 0), NewCoordinate(0, math.Inf(1)))))
}

func TestSegmentLengths(t *testing.T) {
	assert.Equal(t, []float64{}, SegmentLengths(nil))
	assert.Equal(t, []float64{}, SegmentLengths([]Coordinate{NewCoordinate(1, 2)}))

	coords := []Coordinate{
		NewCoordinate(0, 0),
		NewCoordinate(0, 1),
		NewCoordinate(0, 1),
		NewCoordinate(1, 1),
	}
	lengths := SegmentLengths(coords)
	require.Len(t, lengths, 3)
	assert.Equal(t, Distance(coords[0], coords[1]), lengths[0])
	assert.Equal(t, 0.0, lengths[1])
	assert.Equal(t, Distance(coords[2], coords[3]), lengths[2])
}

func TestTotalLength(t *testing.T) {
	coords := []Coordinate{NewCoordinate(0, 0), NewCoordinate(0, 1), NewCoordinate(0, 2)}
	assert.InDelta(t, 2*Distance(coords[0], coords[1]), TotalLength(coords), 0.01)
	assert.Equal(t, 0.0, TotalLength(nil))
}

func TestBoundingBox(t *testing.T) {
	minLat, minLon, maxLat, maxLon := BoundingBox(16.8, 96.15, 1000)
	assert.Less(t, minLat, 16.8)
	assert.Greater(t, maxLat, 16.8)
	assert.Less(t, minLon, 96.15)
	assert.Greater(t, maxLon, 96.15)
	assert.InDelta(t, 1000, Distance(NewCoordinate(96.15, minLat), NewCoordinate(96.15, 16.8)), 5)
}
