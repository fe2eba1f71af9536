package graph

import "testing"

func TestEdgeIteratorDirections(t *testing.T) {
	g := NewLevelGraph(3)
	ab := g.AddEdge(0, 1, 1.0, FlagsBidirectional())
	bc := g.AddEdge(1, 2, 2.0, FlagsForward())

	collect := func(it EdgeIterator) []uint32 {
		var ids []uint32
		for it.Next() {
			ids = append(ids, it.EdgeID())
		}
		return ids
	}

	// Node 1 can leave via both edges: A↔B backward and B→C forward.
	out := collect(g.GetOutgoing(1))
	if len(out) != 2 || out[0] != ab || out[1] != bc {
		t.Fatalf("outgoing(1) = %v, want [%d %d]", out, ab, bc)
	}

	// Node 1 can only be entered via A↔B; B→C is one-way out.
	in := collect(g.GetIncoming(1))
	if len(in) != 1 || in[0] != ab {
		t.Fatalf("incoming(1) = %v, want [%d]", in, ab)
	}

	// Node 2 has no outgoing edges.
	if out := collect(g.GetOutgoing(2)); len(out) != 0 {
		t.Fatalf("outgoing(2) = %v, want empty", out)
	}

	// Both-direction view yields each incident edge once.
	both := collect(g.GetEdges(1))
	if len(both) != 2 {
		t.Fatalf("edges(1) = %v, want 2 entries", both)
	}
}

func TestEdgeIteratorAdjacent(t *testing.T) {
	g := NewLevelGraph(2)
	g.AddEdge(0, 1, 1.0, FlagsBidirectional())

	it := g.GetOutgoing(1)
	if !it.Next() {
		t.Fatal("expected an outgoing edge from node 1")
	}
	if it.Adjacent() != 0 {
		t.Errorf("Adjacent() = %d, want 0", it.Adjacent())
	}
	if it.Weight() != 1.0 {
		t.Errorf("Weight() = %f, want 1", it.Weight())
	}
	if it.IsShortcut() {
		t.Error("original edge reported as shortcut")
	}
}

func TestShortcutFields(t *testing.T) {
	g := NewLevelGraph(3)
	ab := g.AddEdge(0, 1, 1.0, FlagsForward())
	g.AddEdge(1, 2, 1.0, FlagsForward())

	sc := g.AddEdge(0, 2, 2.0, FlagsForward())
	g.SetSkipped(sc, ab)

	e := g.Edge(sc)
	if e.Skipped != ab {
		t.Errorf("Skipped = %d, want %d", e.Skipped, ab)
	}

	g.UpdateShortcut(sc, 1.5, FlagsBidirectional(), ab)
	e = g.Edge(sc)
	if e.Weight != 1.5 || e.Flags != FlagsBidirectional() {
		t.Errorf("UpdateShortcut not applied: %+v", e)
	}
	if e.From != 0 || e.To != 2 {
		t.Errorf("UpdateShortcut changed endpoints: %+v", e)
	}
}

func TestLevels(t *testing.T) {
	g := NewLevelGraph(2)
	if g.GetLevel(0) != 0 || g.GetLevel(1) != 0 {
		t.Fatal("new nodes must start at level 0")
	}
	g.SetLevel(1, 7)
	if g.GetLevel(1) != 7 {
		t.Errorf("GetLevel(1) = %d, want 7", g.GetLevel(1))
	}
}

func TestCanOverwrite(t *testing.T) {
	tests := []struct {
		existing, next EdgeFlags
		want           bool
	}{
		{FlagsForward(), FlagsForward(), true},
		{FlagsForward(), FlagsBidirectional(), true},
		{FlagsBidirectional(), FlagsBidirectional(), true},
		{FlagsBidirectional(), FlagsForward(), false},
	}
	for _, tt := range tests {
		if got := CanOverwrite(tt.existing, tt.next); got != tt.want {
			t.Errorf("CanOverwrite(%b, %b) = %v, want %v", tt.existing, tt.next, got, tt.want)
		}
	}
}

func TestAllEdgesCursor(t *testing.T) {
	g := NewLevelGraph(3)
	g.AddEdge(0, 1, 1.0, FlagsForward())
	g.AddEdge(1, 2, 2.0, FlagsForward())

	it := g.AllEdges()
	var ids []uint32
	for it.Next() {
		ids = append(ids, it.EdgeID())
	}
	if len(ids) != 2 || ids[0] != 0 || ids[1] != 1 {
		t.Fatalf("AllEdges ids = %v, want [0 1]", ids)
	}
}

func TestSelfLoopIncidentOnce(t *testing.T) {
	g := NewLevelGraph(1)
	g.AddEdge(0, 0, 1.0, FlagsBidirectional())

	it := g.GetEdges(0)
	count := 0
	for it.Next() {
		count++
	}
	if count != 1 {
		t.Errorf("self-loop listed %d times, want 1", count)
	}
}
