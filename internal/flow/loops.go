package flow

// FindLoops performs S4: repeatedly finds strongly-connected
// components of size >= 2 in g, splitting each into a Loop header + a
// ContinueLoop back-jump marker, until none remain, then handles any
// leftover single-node self-loops the same way. Mutates g in place.
func FindLoops(g *Graph) {
	for {
		comps := stronglyConnectedComponents(g)
		if len(comps) == 0 {
			break
		}
		for _, comp := range comps {
			splitComponent(g, comp)
		}
	}

	for idx := 0; idx < len(g.Nodes); idx++ {
		if hasSelfLoop(g, idx) {
			splitComponent(g, []int{idx})
		}
	}
}

func hasSelfLoop(g *Graph, idx int) bool {
	for _, ei := range g.Out(idx) {
		if g.Edges[ei].To == idx {
			return true
		}
	}
	return false
}

// splitComponent rewrites one component (a set of node indices forming a
// cycle, possibly the degenerate single-node self-loop case) into a Loop
// header plus ContinueLoop marker, scoping its members under the new loop.
func splitComponent(g *Graph, comp []int) {
	member := make(map[int]bool, len(comp))
	for _, idx := range comp {
		member[idx] = true
	}

	header := chooseHeader(g, comp, member)
	headerNode := g.Nodes[header]
	parentScope := headerNode.Scope

	// A Join header is spliced in place: its arena slot becomes the Loop
	// itself, its statement moves onto the loop (re-emitted at the top of
	// each iteration by the reducer), its single out-edge becomes the body
	// edge, and outside in-edges already point at the right slot. Any other
	// header kind keeps its slot inside the body, bridged from a fresh Loop
	// node.
	spliced := headerNode.Kind == KindJoin
	var loopIdx int
	if spliced {
		loopIdx = header
		g.Nodes[header].Kind = KindLoop
		g.Nodes[header].Scope = parentScope
	} else {
		loopIdx = g.AddNode(NewLoopNode(headerNode.pos))
		g.Nodes[loopIdx].Scope = parentScope
	}

	continueIdx := g.AddNode(NewContinueLoopNode(headerNode.pos, loopIdx))

	for _, idx := range comp {
		if idx == loopIdx {
			// The Loop itself lives in the enclosing scope, not its own.
			continue
		}
		g.Nodes[idx].Scope = loopIdx
		g.Nodes[idx].Scopes = append(append([]int{}, g.Nodes[idx].Scopes...), loopIdx)
	}

	// Rewrite every in-edge of the header: back edges from inside the
	// component (self-loop edges, From==To==header, included) become the
	// loop's continue edge; entries from outside target the Loop node.
	for _, ei := range g.In(header) {
		src := g.Edges[ei].From
		if member[src] {
			g.Retarget(ei, continueIdx)
		} else if !spliced {
			g.Retarget(ei, loopIdx)
		}
	}

	if !spliced {
		g.AddEdge(Edge{From: loopIdx, To: header})
	}
}

// chooseHeader picks the component node maximising the count of live
// predecessors outside the component, breaking ties by earliest source
// position.
func chooseHeader(g *Graph, comp []int, member map[int]bool) int {
	best := comp[0]
	bestCount := outsidePredecessors(g, comp[0], member)
	for _, idx := range comp[1:] {
		count := outsidePredecessors(g, idx, member)
		if count > bestCount || (count == bestCount && g.Nodes[idx].Before(g.Nodes[best])) {
			best = idx
			bestCount = count
		}
	}
	return best
}

func outsidePredecessors(g *Graph, idx int, member map[int]bool) int {
	n := 0
	for _, ei := range g.In(idx) {
		if !member[g.Edges[ei].From] {
			n++
		}
	}
	return n
}
