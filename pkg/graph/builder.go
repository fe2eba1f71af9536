package graph

import (
	"github.com/paulmach/osm"

	osmparser "ch_router/pkg/osm"
)

// Build creates a LevelGraph from parsed OSM segments. OSM node ids are
// remapped to dense indices; a two-way segment becomes one bidirectional
// edge record.
func Build(result *osmparser.ParseResult) *LevelGraph {
	segments := result.Segments
	if len(segments) == 0 {
		return NewLevelGraph(0)
	}

	// Step 1: Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	for i := range segments {
		addNode(segments[i].FromNodeID)
		addNode(segments[i].ToNodeID)
	}

	g := NewLevelGraph(uint32(len(nodeIDs)))

	// Step 2: Node coordinates.
	for id, idx := range nodeSet {
		g.SetCoord(idx, result.NodeLat[id], result.NodeLon[id])
	}

	// Step 3: Edge records. Oneway segments get forward-only flags; the
	// parser already normalises reversed oneways to From→To order.
	for i := range segments {
		s := &segments[i]
		flags := FlagsBidirectional()
		if s.Oneway {
			flags = FlagsForward()
		}
		id := g.AddEdge(nodeSet[s.FromNodeID], nodeSet[s.ToNodeID], s.Weight, flags)
		g.SetLength(id, s.LengthMeters)
	}

	return g
}
