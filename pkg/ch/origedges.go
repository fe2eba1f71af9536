package ch

// origEdgeCounts is a dense map from edge id to the number of original edges
// that edge stands in for. Original edges count 1; a shortcut counts the sum
// of its two halves. Storage grows on demand; ungrown ids read as 0.
// The counts feed the contraction heuristic only — query correctness does
// not depend on them.
type origEdgeCounts struct {
	counts []uint32
}

func newOrigEdgeCounts(capacity uint32) *origEdgeCounts {
	return &origEdgeCounts{counts: make([]uint32, capacity)}
}

func (c *origEdgeCounts) grow(edge uint32) {
	for uint32(len(c.counts)) <= edge {
		c.counts = append(c.counts, 0)
	}
}

// set stores n for edge, growing storage to cover it.
func (c *origEdgeCounts) set(edge, n uint32) {
	c.grow(edge)
	c.counts[edge] = n
}

// get returns the stored count for edge, growing storage if needed.
func (c *origEdgeCounts) get(edge uint32) uint32 {
	c.grow(edge)
	return c.counts[edge]
}
