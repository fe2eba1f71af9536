package routing

import (
	"math"

	"ch_router/pkg/graph"
)

const noNode = ^uint32(0) // sentinel for "no node"

// Path is the result of a bidirectional query.
type Path struct {
	Found  bool
	Weight float64  // summed edge weight along the path
	Value  float64  // Weight passed through the executor's weight inverter
	Edges  []uint32 // original (unpacked) edge ids in travel order
	Nodes  []uint32 // node sequence in travel order
}

// QueryState holds per-query scratch for a bidirectional search. Distances
// and predecessors are reset via a touched list so repeated queries on large
// graphs stay allocation-free.
type QueryState struct {
	DistFwd     []float64
	DistBwd     []float64
	PredFwdEdge []uint32
	PredFwdNode []uint32
	PredBwdEdge []uint32
	PredBwdNode []uint32
	Touched     []uint32
	FwdPQ       MinHeap
	BwdPQ       MinHeap
}

// NewQueryState creates a QueryState for a graph with n nodes.
func NewQueryState(n uint32) *QueryState {
	qs := &QueryState{
		DistFwd:     make([]float64, n),
		DistBwd:     make([]float64, n),
		PredFwdEdge: make([]uint32, n),
		PredFwdNode: make([]uint32, n),
		PredBwdEdge: make([]uint32, n),
		PredBwdNode: make([]uint32, n),
		Touched:     make([]uint32, 0, 1024),
		FwdPQ:       MinHeap{items: make([]PQItem, 0, 256)},
		BwdPQ:       MinHeap{items: make([]PQItem, 0, 256)},
	}
	for i := range qs.DistFwd {
		qs.DistFwd[i] = math.Inf(1)
		qs.DistBwd[i] = math.Inf(1)
		qs.PredFwdEdge[i] = graph.InvalidEdge
		qs.PredFwdNode[i] = noNode
		qs.PredBwdEdge[i] = graph.InvalidEdge
		qs.PredBwdNode[i] = noNode
	}
	return qs
}

// Reset clears only the touched entries for fast reuse.
func (qs *QueryState) Reset() {
	for _, node := range qs.Touched {
		qs.DistFwd[node] = math.Inf(1)
		qs.DistBwd[node] = math.Inf(1)
		qs.PredFwdEdge[node] = graph.InvalidEdge
		qs.PredFwdNode[node] = noNode
		qs.PredBwdEdge[node] = graph.InvalidEdge
		qs.PredBwdNode[node] = noNode
	}
	qs.Touched = qs.Touched[:0]
	qs.FwdPQ.Reset()
	qs.BwdPQ.Reset()
}

func (qs *QueryState) touch(node uint32) {
	if math.IsInf(qs.DistFwd[node], 1) && math.IsInf(qs.DistBwd[node], 1) {
		qs.Touched = append(qs.Touched, node)
	}
}

// BidirectionalDijkstra is a bidirectional shortest-path executor over a
// LevelGraph. Three function-valued hooks specialise it: AcceptEdge filters
// relaxations, Finished overrides the termination test, and ExtractPath
// turns the meeting point into a Path. With the hooks at their defaults it
// is a plain bidirectional Dijkstra over the full graph.
type BidirectionalDijkstra struct {
	g  *graph.LevelGraph
	st *QueryState

	// AcceptEdge reports whether the relaxation cur→it.Adjacent() is
	// admitted. Nil admits everything.
	AcceptEdge func(cur uint32, it *graph.EdgeIterator) bool
	// Finished reports whether the search may stop, given the minimum open
	// weight of each frontier (+Inf when drained) and the best meeting
	// weight so far. Nil uses fwdMin+bwdMin >= best.
	Finished func(fwdMin, bwdMin, best float64) bool
	// ExtractPath builds the result from the meeting node. Nil uses
	// PlainExtract.
	ExtractPath func(g *graph.LevelGraph, st *QueryState, meet uint32) ([]uint32, []uint32)
	// InvertWeight derives the reported Value from the path weight.
	// Defaults to identity.
	InvertWeight func(w float64) float64
}

// NewBidirectionalDijkstra creates an executor with default hooks.
func NewBidirectionalDijkstra(g *graph.LevelGraph) *BidirectionalDijkstra {
	return &BidirectionalDijkstra{
		g:            g,
		st:           NewQueryState(g.NumNodes()),
		InvertWeight: func(w float64) float64 { return w },
	}
}

// Query computes a shortest path between two nodes. Out-of-range endpoints
// (including any query on an empty graph) yield a not-found Path.
func (b *BidirectionalDijkstra) Query(from, to uint32) *Path {
	n := b.g.NumNodes()
	if from >= n || to >= n {
		return &Path{}
	}
	if from == to {
		return &Path{Found: true, Weight: 0, Value: b.InvertWeight(0), Nodes: []uint32{from}}
	}

	qs := b.st
	qs.Reset()

	qs.touch(from)
	qs.DistFwd[from] = 0
	qs.FwdPQ.Push(from, 0)
	qs.touch(to)
	qs.DistBwd[to] = 0
	qs.BwdPQ.Push(to, 0)

	best := math.Inf(1)
	meet := noNode

	for {
		fwdMin := qs.FwdPQ.PeekDist()
		bwdMin := qs.BwdPQ.PeekDist()
		if b.finished(fwdMin, bwdMin, best) {
			break
		}

		// Forward step.
		if fwdMin < best {
			item := qs.FwdPQ.Pop()
			u := item.Node
			d := item.Dist

			if d <= qs.DistFwd[u] {
				if qs.DistBwd[u] < math.Inf(1) {
					if candidate := d + qs.DistBwd[u]; candidate < best {
						best = candidate
						meet = u
					}
				}

				it := b.g.GetOutgoing(u)
				for it.Next() {
					if b.AcceptEdge != nil && !b.AcceptEdge(u, &it) {
						continue
					}
					v := it.Adjacent()
					newDist := d + it.Weight()
					if newDist < qs.DistFwd[v] {
						qs.touch(v)
						qs.DistFwd[v] = newDist
						qs.PredFwdEdge[v] = it.EdgeID()
						qs.PredFwdNode[v] = u
						qs.FwdPQ.Push(v, newDist)
					}
				}
			}
		}

		// Backward step, re-checking the bound against a possibly updated best.
		if qs.BwdPQ.PeekDist() < best {
			item := qs.BwdPQ.Pop()
			u := item.Node
			d := item.Dist

			if d <= qs.DistBwd[u] {
				if qs.DistFwd[u] < math.Inf(1) {
					if candidate := qs.DistFwd[u] + d; candidate < best {
						best = candidate
						meet = u
					}
				}

				it := b.g.GetIncoming(u)
				for it.Next() {
					if b.AcceptEdge != nil && !b.AcceptEdge(u, &it) {
						continue
					}
					v := it.Adjacent()
					newDist := d + it.Weight()
					if newDist < qs.DistBwd[v] {
						qs.touch(v)
						qs.DistBwd[v] = newDist
						qs.PredBwdEdge[v] = it.EdgeID()
						qs.PredBwdNode[v] = u
						qs.BwdPQ.Push(v, newDist)
					}
				}
			}
		}
	}

	if meet == noNode || math.IsInf(best, 1) {
		return &Path{}
	}

	extract := b.ExtractPath
	if extract == nil {
		extract = PlainExtract
	}
	edges, nodes := extract(b.g, qs, meet)

	return &Path{
		Found:  true,
		Weight: best,
		Value:  b.InvertWeight(best),
		Edges:  edges,
		Nodes:  nodes,
	}
}

func (b *BidirectionalDijkstra) finished(fwdMin, bwdMin, best float64) bool {
	if b.Finished != nil {
		return b.Finished(fwdMin, bwdMin, best)
	}
	return fwdMin+bwdMin >= best
}
