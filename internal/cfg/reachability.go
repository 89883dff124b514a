package cfg

// Reporter receives non-fatal S2 diagnostics: statements that a StmtGraph
// carried but that the DFS from Entry never reached. The core never fails
// because of this; a nil Reporter silently drops them.
type Reporter interface {
	UnreachableStatement(node StmtNode)
}

// ReachabilityFilter performs S2: a DFS from Entry that keeps only the
// nodes and edges actually encountered, renumbering the survivors densely
// (this package has no string IDs, only arena indices).
type ReachabilityFilter struct {
	reporter Reporter
}

// NewReachabilityFilter creates a filter. reporter may be nil.
func NewReachabilityFilter(reporter Reporter) *ReachabilityFilter {
	return &ReachabilityFilter{reporter: reporter}
}

// Filter returns a new StmtGraph containing only the subgraph of g
// reachable from g.Entry, with nodes renumbered densely from 0. Unreachable
// nodes are reported via f.reporter and otherwise dropped.
func (f *ReachabilityFilter) Filter(g *StmtGraph) *StmtGraph {
	reached := make([]bool, len(g.Nodes))
	f.markReachable(g, g.Entry, reached)

	remap := make([]int, len(g.Nodes))
	for i := range remap {
		remap[i] = -1
	}

	out := &StmtGraph{SectionName: g.SectionName}
	for idx, n := range g.Nodes {
		if !reached[idx] {
			if f.reporter != nil && n.Kind == NodeStmt {
				f.reporter.UnreachableStatement(n)
			}
			continue
		}
		remap[idx] = len(out.Nodes)
		out.Nodes = append(out.Nodes, n)
	}

	for _, e := range g.Edges {
		if !reached[e.From] || !reached[e.To] {
			continue
		}
		out.Edges = append(out.Edges, StmtEdge{
			From: remap[e.From],
			To:   remap[e.To],
			Kind: e.Kind,
		})
	}

	out.Entry = remap[g.Entry]
	out.Exit = remap[g.Exit]
	return out
}

func (f *ReachabilityFilter) markReachable(g *StmtGraph, idx int, reached []bool) {
	if reached[idx] {
		return
	}
	reached[idx] = true
	for _, ei := range g.Out(idx) {
		f.markReachable(g, g.Edges[ei].To, reached)
	}
}
