package ch

import (
	"errors"
	"log"

	"ch_router/pkg/graph"
	"ch_router/pkg/routing"
)

// ErrAlreadyPrepared is returned by DoWork when preparation already ran on
// this instance. The level-graph contract forbids preparing a graph twice.
var ErrAlreadyPrepared = errors.New("graph already prepared")

// ErrNoGraph is returned by DoWork when SetGraph was never called.
var ErrNoGraph = errors.New("no graph bound")

// Priority coefficients. The originalEdgesCoef term dominates on purpose:
// it penalises shortcuts that stand in for long chains and keeps shortcut
// proliferation down on grid-like networks.
const (
	edgeDifferenceCoef       = 10
	originalEdgesCoef        = 50
	contractedNeighboursCoef = 1
)

// shortcut is one candidate edge produced by findShortcuts, not yet
// materialised into the graph.
type shortcut struct {
	from      uint32
	to        uint32
	weight    float64
	flags     graph.EdgeFlags
	skipped   uint32 // edge id of the incoming half u→v
	origEdges uint32 // σ(u→v) + σ(v→w)
}

// Preparation runs Contraction Hierarchies preprocessing on a borrowed
// LevelGraph: it assigns every node a level and inserts the shortcuts needed
// so that level-ascending bidirectional queries stay exact. Single-threaded;
// the graph must have no other mutator while DoWork runs.
type Preparation struct {
	g         *graph.LevelGraph
	origEdges *origEdgeCounts
	queue     *nodeQueue
	prios     []int
	witness   *witnessSearch
	invert    func(float64) float64

	// Scratch, reused across findShortcuts calls.
	shortcuts []shortcut
	goals     []witnessGoal

	prepared      bool
	shortcutCount int
	maxLevel      int
}

// NewPreparation creates an unbound preparation instance.
func NewPreparation() *Preparation {
	return &Preparation{}
}

// SetGraph binds the level graph to prepare.
func (p *Preparation) SetGraph(g *graph.LevelGraph) { p.g = g }

// SetWeightInverter installs the function query results use to turn stored
// weights back into caller units. Defaults to identity.
func (p *Preparation) SetWeightInverter(f func(float64) float64) { p.invert = f }

// ShortcutCount returns the number of shortcut edges inserted by DoWork.
func (p *Preparation) ShortcutCount() int { return p.shortcutCount }

// MaxLevel returns the highest level assigned by DoWork.
func (p *Preparation) MaxLevel() int { return p.maxLevel }

// DoWork runs edge preparation and node contraction. It may be called once
// per instance; a second call returns ErrAlreadyPrepared. An empty graph is
// not an error: the queue is never populated and queries find no path.
func (p *Preparation) DoWork() error {
	if p.g == nil {
		return ErrNoGraph
	}
	if p.prepared {
		return ErrAlreadyPrepared
	}
	p.prepared = true

	p.initEdgeCounters()
	if p.g.NumEdges() == 0 {
		return nil
	}

	p.witness = newWitnessSearch(p.g)
	p.prepareNodes()
	p.contractNodes()
	return nil
}

// CreateAlgo returns a bidirectional query executor configured for the
// prepared graph.
func (p *Preparation) CreateAlgo() *routing.BidirectionalDijkstra {
	return NewQueryAlgo(p.g, p.invert)
}

// NewQueryAlgo configures a bidirectional executor over a prepared graph:
// relaxation only admits transitions toward strictly higher levels, the
// search stops once both frontiers have passed the best meeting weight, and
// shortcut edges are unpacked during path extraction.
func NewQueryAlgo(g *graph.LevelGraph, invert func(float64) float64) *routing.BidirectionalDijkstra {
	algo := routing.NewBidirectionalDijkstra(g)
	algo.AcceptEdge = func(cur uint32, it *graph.EdgeIterator) bool {
		return g.GetLevel(it.Adjacent()) > g.GetLevel(cur)
	}
	algo.Finished = func(fwdMin, bwdMin, best float64) bool {
		// Drained directions peek +Inf and satisfy their bound vacuously.
		return fwdMin >= best && bwdMin >= best
	}
	algo.ExtractPath = routing.UnpackedExtract
	if invert != nil {
		algo.InvertWeight = invert
	}
	return algo
}

// initEdgeCounters writes σ = 1 for every pre-existing edge.
func (p *Preparation) initEdgeCounters() {
	p.origEdges = newOrigEdgeCounts(p.g.NumEdges())
	all := p.g.AllEdges()
	for all.Next() {
		p.origEdges.set(all.EdgeID(), 1)
	}
}

// prepareNodes computes the initial priority of every node and fills the
// contraction queue.
func (p *Preparation) prepareNodes() {
	n := p.g.NumNodes()
	p.prios = make([]int, n)
	p.queue = newNodeQueue(n)
	for v := uint32(0); v < n; v++ {
		prio := p.calculatePriority(v)
		p.prios[v] = prio
		p.queue.insert(v, prio)
	}
}

// contractNodes pops minimum-priority nodes, lazily revalidating their
// priority, and contracts them one by one. Every update_interval steps on
// every second epoch the priorities of all uncontracted nodes are refreshed
// so the heuristic stays globally consistent.
func (p *Preparation) contractNodes() {
	numNodes := p.queue.size()
	updateInterval := numNodes / 10
	if updateInterval < 10 {
		updateInterval = 10
	}

	level := 1
	epoch := 0
	step := 0

	logInterval := 50000

	for !p.queue.isEmpty() {
		if step%updateInterval == 0 {
			if epoch > 0 && epoch%2 == 0 {
				p.updateAllPriorities()
			}
			epoch++
		}
		step++

		node := p.queue.pollMinKey()

		// Lazy revalidation: if the recomputed priority no longer beats the
		// queue minimum, demote the node and pick a different minimum.
		newPrio := p.calculatePriority(node)
		p.prios[node] = newPrio
		if !p.queue.isEmpty() && newPrio > p.queue.peekMinPriority() {
			p.queue.insert(node, newPrio)
			continue
		}

		p.shortcutCount += p.addShortcuts(node)
		p.g.SetLevel(node, level)
		p.maxLevel = level
		level++

		// Refresh the priorities of uncontracted neighbours.
		it := p.g.GetEdges(node)
		for it.Next() {
			n := it.Adjacent()
			if n == node || p.g.GetLevel(n) != 0 {
				continue
			}
			old := p.prios[n]
			prio := p.calculatePriority(n)
			if prio != old {
				p.prios[n] = prio
				p.queue.update(n, old, prio)
			}
		}

		// Adaptive logging: more frequent as the queue drains.
		remaining := p.queue.size()
		switch {
		case remaining < 1000:
			logInterval = 100
		case remaining < 10000:
			logInterval = 1000
		case remaining < 100000:
			logInterval = 10000
		default:
			logInterval = 50000
		}
		if (level-1)%logInterval == 0 {
			log.Printf("Contracted %d/%d nodes, %d shortcuts so far", level-1, numNodes, p.shortcutCount)
		}
	}

	log.Printf("Contraction complete: %d nodes, %d shortcuts created", p.maxLevel, p.shortcutCount)
}

// updateAllPriorities recomputes the priority of every uncontracted node.
func (p *Preparation) updateAllPriorities() {
	for v := uint32(0); v < p.g.NumNodes(); v++ {
		if p.g.GetLevel(v) != 0 {
			continue
		}
		old := p.prios[v]
		prio := p.calculatePriority(v)
		if prio != old {
			p.prios[v] = prio
			p.queue.update(v, old, prio)
		}
	}
}

// calculatePriority evaluates the contraction heuristic for v. It depends on
// the current graph and σ table but never on v's own priority or level, so
// the lazy demote step in contractNodes terminates.
func (p *Preparation) calculatePriority(v uint32) int {
	shortcuts := p.findShortcuts(v)

	degree := 0
	contractedConns := 0
	it := p.g.GetEdges(v)
	for it.Next() {
		degree++
		if it.IsShortcut() {
			contractedConns++
		}
	}

	sumOrig := 0
	for i := range shortcuts {
		sumOrig += int(shortcuts[i].origEdges)
	}

	return edgeDifferenceCoef*(len(shortcuts)-degree) +
		originalEdgesCoef*sumOrig +
		contractedNeighboursCoef*contractedConns
}

// findShortcuts computes the shortcuts needed to preserve every shortest
// path through v, without touching the graph or the σ table. One witness
// search runs per uncontracted incoming neighbour, against the goal set of
// all uncontracted outgoing neighbours. The returned slice is scratch,
// valid until the next call.
func (p *Preparation) findShortcuts(v uint32) []shortcut {
	p.shortcuts = p.shortcuts[:0]

	in := p.g.GetIncoming(v)
	for in.Next() {
		u := in.Adjacent()
		if u == v || p.g.GetLevel(u) != 0 {
			continue
		}
		uvEdge := in.EdgeID()
		uvWeight := in.Weight()
		uvOrig := p.origEdges.get(uvEdge)

		// Goal set: every uncontracted outgoing neighbour except u itself.
		p.goals = p.goals[:0]
		limit := 0.0
		out := p.g.GetOutgoing(v)
		for out.Next() {
			w := out.Adjacent()
			if w == v || w == u || p.g.GetLevel(w) != 0 {
				continue
			}
			via := uvWeight + out.Weight()
			if via > limit {
				limit = via
			}
			p.goals = append(p.goals, witnessGoal{
				node:         w,
				viaWeight:    via,
				outOrigEdges: p.origEdges.get(out.EdgeID()),
			})
		}
		if len(p.goals) == 0 {
			continue
		}

		p.witness.run(u, v, limit, p.goals)

		for i := range p.goals {
			goal := &p.goals[i]
			// An equal-weight witness suppresses the shortcut.
			if goal.settled && goal.witnessWeight <= goal.viaWeight {
				continue
			}
			p.appendShortcut(shortcut{
				from:      u,
				to:        goal.node,
				weight:    goal.viaWeight,
				flags:     graph.FlagsForward(),
				skipped:   uvEdge,
				origEdges: uvOrig + goal.outOrigEdges,
			})
		}
	}

	return p.shortcuts
}

// appendShortcut adds a candidate to the scratch set, merging a reverse
// candidate of exactly equal weight into one bidirectional shortcut and
// suppressing outright duplicates.
func (p *Preparation) appendShortcut(sc shortcut) {
	for i := range p.shortcuts {
		ex := &p.shortcuts[i]
		if ex.from == sc.to && ex.to == sc.from && ex.weight == sc.weight {
			ex.flags = graph.FlagsBidirectional()
			return
		}
		if ex.from == sc.from && ex.to == sc.to && ex.weight == sc.weight && ex.flags == sc.flags {
			return
		}
	}
	p.shortcuts = append(p.shortcuts, sc)
}

// addShortcuts materialises the candidate set for v into the graph. An
// existing shortcut between the same endpoints is overwritten in place when
// the new flags cover it and the new weight is strictly smaller; otherwise a
// new edge is inserted. Returns the number of newly inserted edges.
func (p *Preparation) addShortcuts(v uint32) int {
	added := 0
	for _, sc := range p.findShortcuts(v) {
		handled := false
		it := p.g.GetOutgoing(sc.from)
		for it.Next() {
			if !it.IsShortcut() {
				continue
			}
			e := p.g.Edge(it.EdgeID())
			if e.From != sc.from || e.To != sc.to {
				continue
			}
			if graph.CanOverwrite(e.Flags, sc.flags) && e.Weight > sc.weight {
				p.g.UpdateShortcut(it.EdgeID(), sc.weight, sc.flags, sc.skipped)
				p.origEdges.set(it.EdgeID(), sc.origEdges)
				handled = true
				break
			}
		}
		if handled {
			continue
		}

		id := p.g.AddEdge(sc.from, sc.to, sc.weight, sc.flags)
		p.g.SetSkipped(id, sc.skipped)
		p.origEdges.set(id, sc.origEdges)
		added++
	}
	return added
}
