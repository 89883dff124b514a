package flow

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/topo"
)

// arenaNode adapts a plain node index to gonum's graph.Node so topo.TarjanSCC
// can run directly over our index arena.
type arenaNode int64

func (n arenaNode) ID() int64 { return int64(n) }

// arenaEdge is the minimal graph.Edge gonum's traversal needs; it carries no
// weight or attribute data of its own (those live on flow.Edge, looked up by
// the caller when needed).
type arenaEdge struct{ from, to int64 }

func (e arenaEdge) From() graph.Node         { return arenaNode(e.from) }
func (e arenaEdge) To() graph.Node           { return arenaNode(e.to) }
func (e arenaEdge) ReversedEdge() graph.Edge { return arenaEdge{from: e.to, to: e.from} }

// directedView is a read-only graph.Directed view over a flow.Graph's
// currently-live edges, recomputed on every call rather than cached: S4
// mutates the arena between SCC-finding rounds, and a stale cache would
// silently miss newly exposed (or newly broken) cycles.
type directedView struct{ g *Graph }

func (v directedView) Node(id int64) graph.Node {
	if id < 0 || int(id) >= len(v.g.Nodes) {
		return nil
	}
	return arenaNode(id)
}

func (v directedView) Nodes() graph.Nodes {
	ns := make([]graph.Node, len(v.g.Nodes))
	for i := range v.g.Nodes {
		ns[i] = arenaNode(i)
	}
	return iterator.NewOrderedNodes(ns)
}

func (v directedView) From(id int64) graph.Nodes {
	seen := make(map[int64]bool)
	var ns []graph.Node
	for _, ei := range v.g.Out(int(id)) {
		to := int64(v.g.Edges[ei].To)
		if !seen[to] {
			seen[to] = true
			ns = append(ns, arenaNode(to))
		}
	}
	return iterator.NewOrderedNodes(ns)
}

func (v directedView) HasEdgeBetween(xid, yid int64) bool {
	return v.HasEdgeFromTo(xid, yid) || v.HasEdgeFromTo(yid, xid)
}

func (v directedView) HasEdgeFromTo(uid, vid int64) bool {
	for _, ei := range v.g.Out(int(uid)) {
		if int64(v.g.Edges[ei].To) == vid {
			return true
		}
	}
	return false
}

func (v directedView) Edge(uid, vid int64) graph.Edge {
	if !v.HasEdgeFromTo(uid, vid) {
		return nil
	}
	return arenaEdge{from: uid, to: vid}
}

func (v directedView) To(id int64) graph.Nodes {
	seen := make(map[int64]bool)
	var ns []graph.Node
	for _, e := range v.g.Edges {
		if !e.Dead && int64(e.To) == id && !seen[int64(e.From)] {
			seen[int64(e.From)] = true
			ns = append(ns, arenaNode(e.From))
		}
	}
	return iterator.NewOrderedNodes(ns)
}

// stronglyConnectedComponents returns every component of size >= 2 in g's
// current live-edge subgraph, each sorted ascending and the component list
// itself ordered deterministically by earliest member source position.
func stronglyConnectedComponents(g *Graph) [][]int {
	raw := topo.TarjanSCC(directedView{g})

	var comps [][]int
	for _, c := range raw {
		if len(c) < 2 {
			continue
		}
		idxs := make([]int, len(c))
		for i, n := range c {
			idxs[i] = int(n.ID())
		}
		sort.Ints(idxs)
		comps = append(comps, idxs)
	}

	earliest := func(comp []int) int {
		best := comp[0]
		for _, idx := range comp[1:] {
			if g.Nodes[idx].Before(g.Nodes[best]) {
				best = idx
			}
		}
		return best
	}
	sort.Slice(comps, func(i, j int) bool {
		a, b := earliest(comps[i]), earliest(comps[j])
		if a == b {
			return false
		}
		if g.Nodes[a].Before(g.Nodes[b]) {
			return true
		}
		if g.Nodes[b].Before(g.Nodes[a]) {
			return false
		}
		return a < b
	})
	return comps
}
