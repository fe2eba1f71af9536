package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"ch_router/pkg/geo"
	"ch_router/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeID uint32  // original edge id
	NodeU  uint32  // From endpoint of the edge
	NodeV  uint32  // To endpoint of the edge
	Ratio  float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist   float64 // distance in meters from query point to snapped point
}

// Snapper provides nearest-road snapping backed by an R-tree over the
// bounding boxes of the original (non-shortcut) edges. Boxes are stored as
// (lon, lat) so axis order matches x/y.
type Snapper struct {
	tr rtree.RTreeG[uint32]
	g  *graph.LevelGraph
}

// NewSnapper builds the spatial index from the graph's original edges.
func NewSnapper(g *graph.LevelGraph) *Snapper {
	s := &Snapper{g: g}

	all := g.AllEdges()
	for all.Next() {
		e := all.Edge()
		if e.Skipped != graph.InvalidEdge {
			continue // shortcuts have no geometry
		}
		uLat, uLon := g.Coord(e.From)
		vLat, vLon := g.Coord(e.To)
		min := [2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)}
		max := [2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)}
		s.tr.Insert(min, max, all.EdgeID())
	}

	return s
}

// Snap finds the road segment nearest to the given point. Starts with a
// tight search window and doubles it until a candidate within the maximum
// snap distance appears; the largest window tried is ±0.016°.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	best := SnapResult{Dist: math.Inf(1)}

	// ~0.001° latitude is ~110 m; windows run 0.001°, 0.002°, ..., 0.016°.
	for delta := 0.001; delta <= 0.02; delta *= 2 {
		min := [2]float64{lng - delta, lat - delta}
		max := [2]float64{lng + delta, lat + delta}

		s.tr.Search(min, max, func(_, _ [2]float64, id uint32) bool {
			e := s.g.Edge(id)
			uLat, uLon := s.g.Coord(e.From)
			vLat, vLon := s.g.Coord(e.To)
			dist, ratio := geo.PointToSegmentDist(lat, lng, uLat, uLon, vLat, vLon)
			if dist < best.Dist {
				best = SnapResult{
					EdgeID: id,
					NodeU:  e.From,
					NodeV:  e.To,
					Ratio:  ratio,
					Dist:   dist,
				}
			}
			return true
		})

		if best.Dist <= maxSnapDistMeters {
			return best, nil
		}
	}

	return SnapResult{}, ErrPointTooFar
}
