package structure

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// RootReductionScope owns the bookkeeping every nested BlockReduction shares
// for one section's reduction: which dispatchable nodes
// remain unreduced, how many of each node's in-edges have been folded so
// far, and the target-node -> GotoLabel table. Loop sub-scopes don't get
// their own copy of this state — they just restrict which nodes a
// particular reduction is allowed to dispatch.
type RootReductionScope struct {
	g    *flow.Graph
	opts Options

	// unreduced tracks dispatchable nodes (Entry/Branch/Join/Loop) not yet
	// consumed, one bit per node index.
	unreduced *bitset.BitSet
	reducedIn []int
	totalIn   []int

	labels     map[int]*GotoLabel
	usedNames  map[string]bool
	paraOfStmt map[ast.Statement]*ast.Paragraph

	steps int
}

func newRootReductionScope(g *flow.Graph, sec *ast.Section, opts Options) *RootReductionScope {
	r := &RootReductionScope{
		g:          g,
		opts:       opts,
		unreduced:  bitset.New(uint(len(g.Nodes))),
		reducedIn:  make([]int, len(g.Nodes)),
		totalIn:    make([]int, len(g.Nodes)),
		labels:     make(map[int]*GotoLabel),
		usedNames:  make(map[string]bool),
		paraOfStmt: make(map[ast.Statement]*ast.Paragraph),
	}
	for _, p := range sec.Paragraphs {
		if first := p.FirstStmt(); first != nil {
			r.paraOfStmt[first] = p
		}
	}
	for idx, n := range g.Nodes {
		switch n.Kind {
		case flow.KindEntry, flow.KindBranch, flow.KindJoin, flow.KindLoop:
			r.unreduced.Set(uint(idx))
			r.totalIn[idx] = r.countDispatchableInEdges(idx)
		}
	}
	return r
}

// countDispatchableInEdges is a node's S6 in-degree: every live in-edge
// except those sourced from a GotoNode, whose own out-edge is a reference
// for label allocation only and is never literally traversed.
func (r *RootReductionScope) countDispatchableInEdges(idx int) int {
	n := 0
	for _, ei := range r.g.In(idx) {
		if r.g.Nodes[r.g.Edges[ei].From].Kind != flow.KindGotoNode {
			n++
		}
	}
	return n
}

// arrive records that one more of node's in-edges has been folded and
// reports whether node is now join-ready. It must be
// called exactly once per edge a reduction stops or dispatches at.
func (r *RootReductionScope) arrive(idx int) (ready bool) {
	r.reducedIn[idx]++
	return r.reducedIn[idx] >= r.totalIn[idx]
}

// consume marks idx as dispatched; it must only be called once arrive has
// reported ready.
func (r *RootReductionScope) consume(idx int) {
	r.unreduced.Clear(uint(idx))
	r.steps++
}

func (r *RootReductionScope) isUnreduced(idx int) bool {
	return r.unreduced.Test(uint(idx))
}

// budgetExceeded reports whether the configured reduction step budget has
// been exhausted.
func (r *RootReductionScope) budgetExceeded() bool {
	return r.opts.ReductionBudget > 0 && r.steps > r.opts.ReductionBudget
}

// labelFor lazily allocates (or returns the existing) GotoLabel for idx,
// preferring the COBOL paragraph name when idx is that paragraph's first
// statement, else synthesising "<prefix><line>" from source position.
func (r *RootReductionScope) labelFor(idx int) *GotoLabel {
	if lbl, ok := r.labels[idx]; ok {
		return lbl
	}
	n := r.g.Nodes[idx]
	var para *ast.Paragraph
	name := ""
	if n.Stmt != nil {
		if p, ok := r.paraOfStmt[n.Stmt]; ok {
			para = p
			name = p.Name
		}
	}
	if name == "" {
		prefix := r.opts.LabelPrefix
		if prefix == "" {
			prefix = domain.DefaultLabelPrefix
		}
		name = fmt.Sprintf("%s%d", prefix, n.Pos().FromLine)
	}
	name = r.uniqueName(name)
	lbl := &GotoLabel{Name: name, Paragraph: para}
	r.labels[idx] = lbl
	return lbl
}

// uniqueName appends a numeric suffix on collision (two nodes resolving to
// the same synthesised name, e.g. two statements on the same source line).
func (r *RootReductionScope) uniqueName(base string) string {
	if !r.usedNames[base] {
		r.usedNames[base] = true
		return base
	}
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s_%d", base, i)
		if !r.usedNames[cand] {
			r.usedNames[cand] = true
			return cand
		}
	}
}

// Tails returns the indices of nodes still unreduced after the main driver
// finished, ordered by source position.
func (r *RootReductionScope) tails() []int {
	var idxs []int
	for i := uint(0); i < uint(len(r.g.Nodes)); i++ {
		if r.unreduced.Test(i) {
			idxs = append(idxs, int(i))
		}
	}
	sort.Slice(idxs, func(i, j int) bool { return r.g.Nodes[idxs[i]].Before(r.g.Nodes[idxs[j]]) })
	return idxs
}
