package usecases

import (
	"container/heap"
	"math"
	"slices"

	"github.com/yangonmaps/citymap/internal/core/domain"
	"github.com/yangonmaps/citymap/internal/pkg/geospatial"
)

const (
	// snapRadiusMeters merges road vertices closer than this into one node,
	// which is how separately drawn roads become connected.
	snapRadiusMeters = 1.0
	// maxAccessMeters bounds the walk from a requested point to the network.
	maxAccessMeters = 500.0
	// gridStep is the snapping grid cell in degrees, roughly 11 m of latitude.
	gridStep = 1e-4
)

type gridCell struct{ x, y int64 }

func cellOf(c geospatial.Coordinate) gridCell {
	return gridCell{int64(math.Floor(c.Lon() / gridStep)), int64(math.Floor(c.Lat() / gridStep))}
}

// graphEdge is a directed hop between two nodes along one road.
type graphEdge struct {
	to     int
	road   int
	length float64
}

type graphRoad struct {
	id   string
	name domain.LocalizedText
}

// roadGraph is the routable network. Nodes are snapped road vertices; every
// road segment adds an edge, and a reverse edge unless the road is one-way.
type roadGraph struct {
	nodes []geospatial.Coordinate
	adj   [][]graphEdge
	roads []graphRoad
	grid  map[gridCell][]int
}

func buildRoadGraph(roads []domain.Road) *roadGraph {
	g := &roadGraph{grid: make(map[gridCell][]int)}

	for _, r := range roads {
		coords := geospatial.ExtractLineStringCoords(r.Geometry)
		if len(coords) < 2 {
			continue
		}
		ri := len(g.roads)
		g.roads = append(g.roads, graphRoad{id: r.ID, name: r.Name})

		prev := g.node(coords[0])
		for i := 1; i < len(coords); i++ {
			cur := g.node(coords[i])
			if cur == prev {
				continue
			}
			length := storedLength(r.SegmentLengths, i-1, g.nodes[prev], g.nodes[cur])
			g.adj[prev] = append(g.adj[prev], graphEdge{to: cur, road: ri, length: length})
			if !r.IsOneway {
				g.adj[cur] = append(g.adj[cur], graphEdge{to: prev, road: ri, length: length})
			}
			prev = cur
		}
	}
	return g
}

// storedLength prefers the persisted segment length and falls back to the
// great-circle distance when it is missing or unusable.
func storedLength(lengths []float64, i int, a, b geospatial.Coordinate) float64 {
	if i < len(lengths) && lengths[i] >= 0 && !math.IsInf(lengths[i], 0) && !math.IsNaN(lengths[i]) {
		return lengths[i]
	}
	return geospatial.Distance(a, b)
}

// node returns the index of the node within snapRadiusMeters of c, creating
// one when there is none.
func (g *roadGraph) node(c geospatial.Coordinate) int {
	cell := cellOf(c)
	best, bestDist := -1, snapRadiusMeters
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, n := range g.grid[gridCell{cell.x + dx, cell.y + dy}] {
				if d := geospatial.Distance(c, g.nodes[n]); d < bestDist {
					best, bestDist = n, d
				}
			}
		}
	}
	if best >= 0 {
		return best
	}

	n := len(g.nodes)
	g.nodes = append(g.nodes, c)
	g.adj = append(g.adj, nil)
	g.grid[cell] = append(g.grid[cell], n)
	return n
}

// nearest returns the node closest to c and its distance. ok is false when
// the graph is empty or the closest node is farther than maxAccessMeters.
func (g *roadGraph) nearest(c geospatial.Coordinate) (node int, dist float64, ok bool) {
	node, dist = -1, math.Inf(1)
	for i, n := range g.nodes {
		if d := geospatial.Distance(c, n); d < dist {
			node, dist = i, d
		}
	}
	if node < 0 || dist > maxAccessMeters {
		return -1, 0, false
	}
	return node, dist, true
}

type queueItem struct {
	node int
	cost float64
}

type priorityQueue []queueItem

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].cost < pq[j].cost }
func (pq priorityQueue) Swap(i, j int)      { pq[i], pq[j] = pq[j], pq[i] }

func (pq *priorityQueue) Push(x any) { *pq = append(*pq, x.(queueItem)) }

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// shortestPath runs Dijkstra from start to end. It returns the edges taken in
// order and their summed length; ok is false when end is unreachable.
func (g *roadGraph) shortestPath(start, end int) (path []graphEdge, dist float64, ok bool) {
	if start == end {
		return nil, 0, true
	}

	cost := make([]float64, len(g.nodes))
	for i := range cost {
		cost[i] = math.Inf(1)
	}
	cost[start] = 0

	type hop struct {
		from int
		edge graphEdge
	}
	prev := make([]hop, len(g.nodes))
	visited := make([]bool, len(g.nodes))

	pq := &priorityQueue{{node: start}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(queueItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == end {
			break
		}

		for _, e := range g.adj[cur.node] {
			if visited[e.to] {
				continue
			}
			if next := cost[cur.node] + e.length; next < cost[e.to] {
				cost[e.to] = next
				prev[e.to] = hop{from: cur.node, edge: e}
				heap.Push(pq, queueItem{node: e.to, cost: next})
			}
		}
	}

	if math.IsInf(cost[end], 1) {
		return nil, 0, false
	}
	for at := end; at != start; at = prev[at].from {
		path = append(path, prev[at].edge)
	}
	slices.Reverse(path)
	return path, cost[end], true
}
