package routing

import (
	"context"
	"errors"
	"sync"

	"ch_router/pkg/graph"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDurationSeconds float64
	TotalDistanceMeters  float64
	Geometry             []LatLng
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
}

// Engine implements Router over a prepared level graph. Executors hold
// per-query state, so they are pooled rather than shared.
type Engine struct {
	g        *graph.LevelGraph
	snapper  *Snapper
	algoPool sync.Pool
}

// NewEngine creates a routing engine. newAlgo must yield executors
// configured for the prepared graph (level filter, shortcut unpacking).
func NewEngine(g *graph.LevelGraph, newAlgo func() *BidirectionalDijkstra) *Engine {
	e := &Engine{
		g:       g,
		snapper: NewSnapper(g),
	}
	e.algoPool.New = func() any {
		return newAlgo()
	}
	return e
}

// Route computes the fastest path between two points.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	// Step 1: Snap points to nearest road segments.
	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Step 2: Query between the nearer endpoints of the snapped segments.
	from := startSnap.NodeU
	if startSnap.Ratio > 0.5 {
		from = startSnap.NodeV
	}
	to := endSnap.NodeU
	if endSnap.Ratio > 0.5 {
		to = endSnap.NodeV
	}

	algo := e.algoPool.Get().(*BidirectionalDijkstra)
	path := algo.Query(from, to)
	e.algoPool.Put(algo)

	if !path.Found {
		return nil, ErrNoRoute
	}

	// Step 3: Distance and geometry from the unpacked original edges.
	var distMeters float64
	for _, id := range path.Edges {
		distMeters += e.g.Edge(id).LengthMeters
	}

	geometry := make([]LatLng, 0, len(path.Nodes))
	for _, n := range path.Nodes {
		lat, lon := e.g.Coord(n)
		geometry = append(geometry, LatLng{Lat: lat, Lng: lon})
	}

	return &RouteResult{
		TotalDurationSeconds: path.Value,
		TotalDistanceMeters:  distMeters,
		Geometry:             geometry,
	}, nil
}
