package graph

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient — max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the node indices belonging to the largest
// weakly connected component (edge direction flags are ignored).
func LargestComponent(g *LevelGraph) []uint32 {
	n := g.NumNodes()
	if n == 0 {
		return nil
	}

	uf := NewUnionFind(n)

	all := g.AllEdges()
	for all.Next() {
		e := all.Edge()
		uf.Union(e.From, e.To)
	}

	// Find the representative with the largest size.
	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < n; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	// Collect all nodes in the largest component.
	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < n; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterToComponent creates a new graph containing only the given nodes and
// the edges fully inside that node set. Intended to run before preparation,
// so only original edges are carried over.
func FilterToComponent(g *LevelGraph, nodes []uint32) *LevelGraph {
	if len(nodes) == 0 {
		return NewLevelGraph(0)
	}

	// Build old→new node index mapping.
	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	out := NewLevelGraph(uint32(len(nodes)))
	for newIdx, oldIdx := range nodes {
		lat, lon := g.Coord(oldIdx)
		out.SetCoord(uint32(newIdx), lat, lon)
	}

	all := g.AllEdges()
	for all.Next() {
		e := all.Edge()
		newFrom, okFrom := oldToNew[e.From]
		newTo, okTo := oldToNew[e.To]
		if !okFrom || !okTo {
			continue
		}
		id := out.AddEdge(newFrom, newTo, e.Weight, e.Flags)
		out.SetLength(id, e.LengthMeters)
	}

	return out
}
