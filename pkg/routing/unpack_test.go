package routing

import (
	"testing"

	"ch_router/pkg/graph"
)

// chainWithShortcuts builds 0—1—2—3 (bidirectional, weight 1 each) plus a
// shortcut 0↔2 over node 1 and a nested shortcut 0↔3 over node 2.
func chainWithShortcuts() *graph.LevelGraph {
	g := graph.NewLevelGraph(4)
	g.AddEdge(0, 1, 1, graph.FlagsBidirectional()) // id 0
	g.AddEdge(1, 2, 1, graph.FlagsBidirectional()) // id 1
	g.AddEdge(2, 3, 1, graph.FlagsBidirectional()) // id 2

	sc1 := g.AddEdge(0, 2, 2, graph.FlagsBidirectional()) // id 3
	g.SetSkipped(sc1, 0)
	sc2 := g.AddEdge(0, 3, 3, graph.FlagsBidirectional()) // id 4
	g.SetSkipped(sc2, sc1)
	return g
}

func equalIDs(got, want []uint32) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestUnpackOriginalEdge(t *testing.T) {
	g := chainWithShortcuts()
	var out []uint32
	unpackEdge(g, 0, 0, &out)
	if !equalIDs(out, []uint32{0}) {
		t.Errorf("unpack(original) = %v, want [0]", out)
	}
}

func TestUnpackShortcut(t *testing.T) {
	g := chainWithShortcuts()
	var out []uint32
	unpackEdge(g, 3, 0, &out)
	if !equalIDs(out, []uint32{0, 1}) {
		t.Errorf("unpack(0↔2) = %v, want [0 1]", out)
	}
}

func TestUnpackNestedShortcut(t *testing.T) {
	g := chainWithShortcuts()
	var out []uint32
	unpackEdge(g, 4, 0, &out)
	if !equalIDs(out, []uint32{0, 1, 2}) {
		t.Errorf("unpack(0↔3) = %v, want [0 1 2]", out)
	}
}

func TestUnpackShortcutBackwards(t *testing.T) {
	g := chainWithShortcuts()
	var out []uint32
	unpackEdge(g, 4, 3, &out)
	if !equalIDs(out, []uint32{2, 1, 0}) {
		t.Errorf("unpack(3↔0) = %v, want [2 1 0]", out)
	}
}

func TestFindEdgePrefersMinimumWeight(t *testing.T) {
	g := graph.NewLevelGraph(2)
	g.AddEdge(0, 1, 5, graph.FlagsForward())
	g.AddEdge(0, 1, 2, graph.FlagsForward())

	if id := findEdge(g, 0, 1); id != 1 {
		t.Errorf("findEdge = %d, want 1 (the cheaper parallel)", id)
	}
	if id := findEdge(g, 1, 0); id != graph.InvalidEdge {
		t.Errorf("findEdge against oneway = %d, want InvalidEdge", id)
	}
}

func TestNodesAlong(t *testing.T) {
	g := chainWithShortcuts()
	nodes := nodesAlong(g, 0, []uint32{0, 1, 2})
	if !equalIDs(nodes, []uint32{0, 1, 2, 3}) {
		t.Errorf("nodesAlong = %v, want [0 1 2 3]", nodes)
	}
}
