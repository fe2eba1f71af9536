package ch

import (
	"math"

	"ch_router/pkg/graph"
)

// witnessHeapItem is an entry in the witness search min-heap.
type witnessHeapItem struct {
	node uint32
	dist float64
}

// witnessHeap is a concrete-typed binary min-heap for witness search.
type witnessHeap struct {
	items []witnessHeapItem
}

func (h *witnessHeap) Len() int { return len(h.items) }

func (h *witnessHeap) Push(node uint32, dist float64) {
	h.items = append(h.items, witnessHeapItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *witnessHeap) Pop() witnessHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// siftUp uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

// siftDown uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *witnessHeap) Reset() {
	h.items = h.items[:0]
}

// witnessGoal is one target of a witness search. After run returns, settled
// and witnessWeight describe the shortest u→w path found that avoids the
// contraction candidate.
type witnessGoal struct {
	node          uint32  // outgoing neighbour w of the candidate node
	viaWeight     float64 // weight of the path u→v→w through the candidate
	outOrigEdges  uint32  // σ(v→w)
	settled       bool
	witnessWeight float64
}

// witnessSearch is a single-source many-goal Dijkstra with an avoid-node
// filter and a weight limit. State is reused across invocations via a
// touched-list reset, so a search allocates nothing in the steady state.
// Settled distances are monotonically non-decreasing in settle order.
type witnessSearch struct {
	g        *graph.LevelGraph
	dist     []float64
	predEdge []uint32 // settling edge per node, for path reconstruction
	predNode []uint32
	settled  []bool
	touched  []uint32
	heap     witnessHeap
}

const noNode = ^uint32(0)

func newWitnessSearch(g *graph.LevelGraph) *witnessSearch {
	n := g.NumNodes()
	dist := make([]float64, n)
	predEdge := make([]uint32, n)
	predNode := make([]uint32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		predEdge[i] = graph.InvalidEdge
		predNode[i] = noNode
	}
	return &witnessSearch{
		g:        g,
		dist:     dist,
		predEdge: predEdge,
		predNode: predNode,
		settled:  make([]bool, n),
		heap:     witnessHeap{items: make([]witnessHeapItem, 0, 256)},
	}
}

func (ws *witnessSearch) reset() {
	for _, n := range ws.touched {
		ws.dist[n] = math.Inf(1)
		ws.predEdge[n] = graph.InvalidEdge
		ws.predNode[n] = noNode
		ws.settled[n] = false
	}
	ws.touched = ws.touched[:0]
	ws.heap.Reset()
}

// run searches from source, skipping any transition into avoid or into a
// contracted node, and stops once every goal is settled or the minimum open
// entry exceeds limit. Goal slots are populated in place.
func (ws *witnessSearch) run(source, avoid uint32, limit float64, goals []witnessGoal) {
	ws.reset()

	open := 0
	for i := range goals {
		goals[i].settled = false
		goals[i].witnessWeight = math.Inf(1)
		open++
	}

	ws.dist[source] = 0
	ws.touched = append(ws.touched, source)
	ws.heap.Push(source, 0)

	for ws.heap.Len() > 0 {
		cur := ws.heap.Pop()

		// Skip stale entries.
		if cur.dist > ws.dist[cur.node] {
			continue
		}

		// The frontier minimum has passed the limit: every remaining path
		// is at least this long, so no unsettled goal can have a witness.
		if cur.dist > limit {
			break
		}

		ws.settled[cur.node] = true

		// Settle any goal sitting on this node.
		for i := range goals {
			if goals[i].node == cur.node && !goals[i].settled {
				goals[i].settled = true
				goals[i].witnessWeight = cur.dist
				open--
			}
		}
		if open == 0 {
			break
		}

		// Relax outgoing edges, skipping the avoided node and anything
		// already contracted.
		it := ws.g.GetOutgoing(cur.node)
		for it.Next() {
			adj := it.Adjacent()
			if adj == avoid || ws.g.GetLevel(adj) != 0 {
				continue
			}

			newDist := cur.dist + it.Weight()
			if newDist > limit {
				continue
			}

			if newDist < ws.dist[adj] {
				if math.IsInf(ws.dist[adj], 1) {
					ws.touched = append(ws.touched, adj)
				}
				ws.dist[adj] = newDist
				ws.predEdge[adj] = it.EdgeID()
				ws.predNode[adj] = cur.node
				ws.heap.Push(adj, newDist)
			}
		}
	}
}

// pathWeight returns the settled shortest-path weight to node, or +Inf.
func (ws *witnessSearch) pathWeight(node uint32) float64 {
	if !ws.settled[node] {
		return math.Inf(1)
	}
	return ws.dist[node]
}

// path reconstructs the edge sequence of the settled path to node by
// following predecessor pointers back to the source.
func (ws *witnessSearch) path(node uint32) []uint32 {
	var edges []uint32
	for ws.predEdge[node] != graph.InvalidEdge {
		edges = append(edges, ws.predEdge[node])
		node = ws.predNode[node]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return edges
}
