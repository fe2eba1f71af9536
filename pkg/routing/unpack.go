package routing

import "ch_router/pkg/graph"

const maxUnpackDepth = 100

// PlainExtract reconstructs the overlay edge and node sequence between the
// two search frontiers without unpacking shortcuts. Suitable for executors
// running on a graph without shortcut edges.
func PlainExtract(g *graph.LevelGraph, st *QueryState, meet uint32) ([]uint32, []uint32) {
	fwdEdges, bwdEdges, source := overlayPath(st, meet)

	edges := append(fwdEdges, bwdEdges...)
	return edges, nodesAlong(g, source, edges)
}

// UnpackedExtract reconstructs the path like PlainExtract but descends
// through every shortcut's skipped-edge pointer, yielding original edges
// only.
func UnpackedExtract(g *graph.LevelGraph, st *QueryState, meet uint32) ([]uint32, []uint32) {
	fwdEdges, bwdEdges, source := overlayPath(st, meet)

	edges := make([]uint32, 0, len(fwdEdges)+len(bwdEdges))
	at := source
	for _, id := range fwdEdges {
		unpackEdge(g, id, at, &edges)
		at = otherEndpoint(g, id, at)
	}
	for _, id := range bwdEdges {
		unpackEdge(g, id, at, &edges)
		at = otherEndpoint(g, id, at)
	}

	return edges, nodesAlong(g, source, edges)
}

// overlayPath walks the predecessor chains of both searches and returns the
// overlay edge ids of the forward half (source→meet, travel order), the
// backward half (meet→target, travel order), and the source node.
func overlayPath(st *QueryState, meet uint32) (fwdEdges, bwdEdges []uint32, source uint32) {
	node := meet
	for st.PredFwdNode[node] != noNode {
		fwdEdges = append(fwdEdges, st.PredFwdEdge[node])
		node = st.PredFwdNode[node]
	}
	source = node
	// Reverse to get source→meet order.
	for i, j := 0, len(fwdEdges)-1; i < j; i, j = i+1, j-1 {
		fwdEdges[i], fwdEdges[j] = fwdEdges[j], fwdEdges[i]
	}

	node = meet
	for st.PredBwdNode[node] != noNode {
		bwdEdges = append(bwdEdges, st.PredBwdEdge[node])
		node = st.PredBwdNode[node]
	}

	return fwdEdges, bwdEdges, source
}

// unpackEdge appends the original edges behind edge id, traversed starting
// at node start, to out. Shortcuts are expanded iteratively with an explicit
// stack to avoid deep recursion; each shortcut stores its first half in
// Skipped and the second half is found in the graph between the middle node
// and the far endpoint.
func unpackEdge(g *graph.LevelGraph, id, start uint32, out *[]uint32) {
	type stackItem struct {
		id    uint32
		start uint32
		depth int
	}

	stack := []stackItem{{id, start, 0}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		e := g.Edge(item.id)
		if e.Skipped == graph.InvalidEdge {
			*out = append(*out, item.id)
			continue
		}
		if item.depth > maxUnpackDepth {
			continue // safety bound
		}

		// The skipped edge joins e.From and the middle node.
		skip := g.Edge(e.Skipped)
		mid := skip.To
		if mid == e.From {
			mid = skip.From
		}
		secondHalf := findEdge(g, mid, e.To)
		if secondHalf == graph.InvalidEdge {
			*out = append(*out, item.id)
			continue
		}

		// Push in reverse of travel order so the earlier half pops first.
		if item.start == e.From {
			stack = append(stack, stackItem{secondHalf, mid, item.depth + 1})
			stack = append(stack, stackItem{e.Skipped, e.From, item.depth + 1})
		} else {
			// Bidirectional shortcut traversed To→From.
			stack = append(stack, stackItem{e.Skipped, mid, item.depth + 1})
			stack = append(stack, stackItem{secondHalf, e.To, item.depth + 1})
		}
	}
}

// findEdge returns the minimum-weight edge traversable from → to, or
// InvalidEdge. The minimum-weight match recovers the half a shortcut was
// built from when parallel edges exist.
func findEdge(g *graph.LevelGraph, from, to uint32) uint32 {
	bestID := graph.InvalidEdge
	bestWeight := 0.0
	it := g.GetOutgoing(from)
	for it.Next() {
		if it.Adjacent() != to {
			continue
		}
		if bestID == graph.InvalidEdge || it.Weight() < bestWeight {
			bestID = it.EdgeID()
			bestWeight = it.Weight()
		}
	}
	return bestID
}

// otherEndpoint returns the endpoint of edge id that is not at.
func otherEndpoint(g *graph.LevelGraph, id, at uint32) uint32 {
	e := g.Edge(id)
	if e.From == at {
		return e.To
	}
	return e.From
}

// nodesAlong converts an edge sequence starting at source into the node
// sequence it visits.
func nodesAlong(g *graph.LevelGraph, source uint32, edges []uint32) []uint32 {
	nodes := make([]uint32, 0, len(edges)+1)
	nodes = append(nodes, source)
	at := source
	for _, id := range edges {
		at = otherEndpoint(g, id, at)
		nodes = append(nodes, at)
	}
	return nodes
}
