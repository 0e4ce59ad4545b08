package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/core/ports"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

const (
	// walkingSpeed is the pace behind EstimatedSeconds, in m/s.
	walkingSpeed = 1.4
	// closeLocationMeters is how near a defined location must be to stand in
	// for a requested endpoint.
	closeLocationMeters = 50.0
	routeGraphTTL       = 5 * time.Minute
)

var (
	userToRoadName = domain.LocalizedText{
		MM: "စတင်သည့်နေရာမှ အနီးဆုံးသတ်မှတ်နေရာသို့",
		EN: "From Start Location to Nearest Defined Location",
	}
	roadToUserName = domain.LocalizedText{
		MM: "အနီးဆုံးသတ်မှတ်နေရာမှ ပြီးဆုံးနေရာသို့",
		EN: "From Nearest Defined Location to End Location",
	}
)

// RouteService plans shortest routes over the road network.
type RouteService struct {
	graphs    ports.RouteGraphRepository
	locations ports.LocationRepository
	ttl       time.Duration
	now       func() time.Time

	mu      sync.Mutex
	graph   *roadGraph
	builtAt time.Time
}

// NewRouteService creates a new RouteService. locations may be nil, in which
// case endpoints are always reported as user input.
func NewRouteService(graphs ports.RouteGraphRepository, locations ports.LocationRepository) *RouteService {
	return &RouteService{graphs: graphs, locations: locations, ttl: routeGraphTTL, now: time.Now}
}

// Plan returns the shortest road route from start to end. Both points must
// lie within 500 m of the network; ErrNoRoute is returned otherwise and when
// the network does not connect them.
func (s *RouteService) Plan(ctx context.Context, start, end geospatial.Coordinate) (_ *domain.Route, err error) {
	ctx, span := tracer.Start(ctx, "RouteService.Plan")
	defer func() { finishSpan(span, err) }()

	if !validPoint(start) || !validPoint(end) {
		return nil, ErrInvalidPoint
	}

	g, err := s.loadGraph(ctx)
	if err != nil {
		return nil, err
	}

	from, startGap, ok := g.nearest(start)
	if !ok {
		return nil, ErrNoRoute
	}
	to, endGap, ok := g.nearest(end)
	if !ok {
		return nil, ErrNoRoute
	}
	path, roadDist, ok := g.shortestPath(from, to)
	if !ok {
		return nil, ErrNoRoute
	}

	route := assembleRoute(g, start, end, from, startGap, endGap, path, roadDist)
	if len(route.Coordinates) < 2 {
		return nil, ErrNoRoute
	}
	route.Start = s.endpoint(ctx, start)
	route.End = s.endpoint(ctx, end)
	return route, nil
}

// Invalidate drops the cached road network so the next Plan reloads it.
func (s *RouteService) Invalidate() {
	s.mu.Lock()
	s.graph = nil
	s.mu.Unlock()
}

func (s *RouteService) loadGraph(ctx context.Context) (*roadGraph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph != nil && s.now().Sub(s.builtAt) < s.ttl {
		return s.graph, nil
	}

	roads, err := s.graphs.ListRoutable(ctx)
	if err != nil {
		return nil, fmt.Errorf("load road network: %w", err)
	}
	g := buildRoadGraph(roads)
	s.graph, s.builtAt = g, s.now()

	slog.InfoContext(ctx, "road graph built", "roads", len(g.roads), "nodes", len(g.nodes))
	return g, nil
}

// endpoint reports the defined location closest to c when one is within
// closeLocationMeters, and c itself otherwise.
func (s *RouteService) endpoint(ctx context.Context, c geospatial.Coordinate) domain.RouteEndpoint {
	ep := domain.RouteEndpoint{Type: domain.EndpointUserInput, Lon: c.Lon(), Lat: c.Lat()}
	if s.locations == nil {
		return ep
	}

	locs, err := s.locations.FindNearby(ctx, c.Lat(), c.Lon(), closeLocationMeters, 1)
	if err != nil {
		slog.WarnContext(ctx, "route endpoint lookup failed", "error", err)
		return ep
	}
	if len(locs) == 0 || locs[0].Location == nil {
		return ep
	}

	loc := locs[0]
	return domain.RouteEndpoint{
		Type:       domain.EndpointDefinedLocation,
		LocationID: loc.ID,
		Name:       &loc.Name,
		Address:    &loc.Address,
		Lon:        loc.Location.Lon,
		Lat:        loc.Location.Lat,
	}
}

func assembleRoute(g *roadGraph, start, end geospatial.Coordinate, from int, startGap, endGap float64, path []graphEdge, roadDist float64) *domain.Route {
	coords := []geospatial.Coordinate{start}
	segments := []domain.RouteSegment{}

	if startGap > 0 {
		segments = append(segments, domain.RouteSegment{
			Type: domain.SegmentUserToRoad, Name: userToRoadName, Length: startGap,
		})
	}
	if g.nodes[from] != start {
		coords = append(coords, g.nodes[from])
	}

	// Consecutive hops along the same road collapse into one segment.
	for _, e := range path {
		coords = append(coords, g.nodes[e.to])
		road := g.roads[e.road]
		if n := len(segments); n > 0 && segments[n-1].Type == domain.SegmentRoad && segments[n-1].RoadID == road.id {
			segments[n-1].Length += e.length
			continue
		}
		segments = append(segments, domain.RouteSegment{
			Type: domain.SegmentRoad, RoadID: road.id, Name: road.name, Length: e.length,
		})
	}

	if endGap > 0 {
		segments = append(segments, domain.RouteSegment{
			Type: domain.SegmentRoadToUser, Name: roadToUserName, Length: endGap,
		})
	}
	if coords[len(coords)-1] != end {
		coords = append(coords, end)
	}

	for i := range segments {
		segments[i].Length = round2(segments[i].Length)
		segments[i].LengthFormatted = geospatial.FormatDistance(segments[i].Length)
	}

	total := round2(startGap + roadDist + endGap)
	return &domain.Route{
		Coordinates:      coords,
		Segments:         segments,
		TotalDistance:    total,
		TotalFormatted:   geospatial.FormatDistance(total),
		EstimatedSeconds: round2(total / walkingSpeed),
		EncodedPolyline:  geospatial.EncodePolyline(coords),
		Bounds:           domain.BoundsOf(coords),
	}
}

func validPoint(c geospatial.Coordinate) bool {
	return c.IsFinite() && math.Abs(c.Lon()) <= 180 && math.Abs(c.Lat()) <= 90
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
