package routing

import (
	"errors"
	"testing"

	"ch_router/pkg/graph"
)

// snapTestGraph lays a small square of roads around 1.30°N 103.80°E,
// ~220 m on a side.
func snapTestGraph() *graph.LevelGraph {
	g := graph.NewLevelGraph(4)
	g.SetCoord(0, 1.3000, 103.8000)
	g.SetCoord(1, 1.3000, 103.8020)
	g.SetCoord(2, 1.3020, 103.8000)
	g.SetCoord(3, 1.3020, 103.8020)

	g.AddEdge(0, 1, 12, graph.FlagsBidirectional()) // south side, west-east
	g.AddEdge(0, 2, 12, graph.FlagsBidirectional()) // west side, south-north
	g.AddEdge(1, 3, 12, graph.FlagsBidirectional()) // east side, south-north
	return g
}

func TestSnapToNearestEdge(t *testing.T) {
	s := NewSnapper(snapTestGraph())

	// Just south of the south side, a quarter along it.
	snap, err := s.Snap(1.2999, 103.8005)
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if snap.EdgeID != 0 {
		t.Errorf("EdgeID = %d, want 0", snap.EdgeID)
	}
	if snap.Ratio < 0.2 || snap.Ratio > 0.3 {
		t.Errorf("Ratio = %f, want ~0.25", snap.Ratio)
	}
	if snap.Dist > 50 {
		t.Errorf("Dist = %f m, want ~11 m", snap.Dist)
	}
}

func TestSnapTooFar(t *testing.T) {
	s := NewSnapper(snapTestGraph())

	_, err := s.Snap(1.40, 103.90) // ~15 km away
	if !errors.Is(err, ErrPointTooFar) {
		t.Errorf("err = %v, want ErrPointTooFar", err)
	}
}

func TestSnapIgnoresShortcuts(t *testing.T) {
	g := snapTestGraph()
	// A shortcut across the square's diagonal must never be a snap target,
	// even for a point sitting right on it.
	sc := g.AddEdge(0, 3, 24, graph.FlagsBidirectional())
	g.SetSkipped(sc, 0)

	s := NewSnapper(g)
	snap, err := s.Snap(1.3010, 103.8010) // on the diagonal, square center
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if snap.EdgeID == sc {
		t.Error("snapped to a shortcut edge")
	}
}
