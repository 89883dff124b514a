// Package cfg builds the per-section statement graph (S1) and reduces it to
// the subgraph reachable from Entry (S2). Nodes live in a flat arena and are
// referred to by index rather than pointer, so the later stages
// (internal/flow) can freely redirect edges without chasing shared mutable
// node objects.
package cfg

import (
	"fmt"

	"github.com/ludo-technologies/cobscn/internal/ast"
)

// NodeKind classifies a StmtNode. S1's graph only ever has these three
// kinds; Branch/Join/Loop/... classification happens in internal/flow (S3+).
type NodeKind int

const (
	NodeEntry NodeKind = iota
	NodeExit
	NodeStmt
)

func (k NodeKind) String() string {
	switch k {
	case NodeEntry:
		return "entry"
	case NodeExit:
		return "exit"
	case NodeStmt:
		return "stmt"
	default:
		return "unknown"
	}
}

// StmtNode is one statement occurrence (or the section's singleton
// Entry/Exit). Stmt is nil for Entry and Exit.
type StmtNode struct {
	Kind NodeKind
	Stmt ast.Statement
}

// Source returns the node's position for ordering, with Entry before
// anything and Exit after everything.
func (n StmtNode) Source() (src ast.Source, isEntry, isExit bool) {
	switch n.Kind {
	case NodeEntry:
		return ast.Source{}, true, false
	case NodeExit:
		return ast.Source{}, false, true
	default:
		return n.Stmt.Src(), false, false
	}
}

// EdgeKind distinguishes why an edge exists; only Branch edges carry a
// boolean condition label.
type EdgeKind int

const (
	// EdgeSequential covers fall-through, GO TO, and terminating edges —
	// anything with no condition label.
	EdgeSequential EdgeKind = iota
	// EdgeBranchTrue is the then-arm out-edge of an IF.
	EdgeBranchTrue
	// EdgeBranchFalse is the else-arm out-edge of an IF.
	EdgeBranchFalse
)

// StmtEdge is a directed edge between two StmtNode indices.
type StmtEdge struct {
	From, To int
	Kind     EdgeKind
}

// Condition reports the edge's boolean label, if any.
func (e StmtEdge) Condition() (cond bool, ok bool) {
	switch e.Kind {
	case EdgeBranchTrue:
		return true, true
	case EdgeBranchFalse:
		return false, true
	default:
		return false, false
	}
}

// StmtGraph is the S1 output: one node per reachable-or-not statement in a
// section, plus Entry/Exit, and the edges S1's builder derived from COBOL
// control-transfer semantics.
type StmtGraph struct {
	SectionName string
	Nodes       []StmtNode
	Edges       []StmtEdge
	Entry       int
	Exit        int

	out [][]int // node idx -> edge idx list, lazily built by Out()
	in  [][]int
}

// Out returns the indices (into Edges) of g's out-edges from node idx.
func (g *StmtGraph) Out(idx int) []int {
	g.ensureAdjacency()
	return g.out[idx]
}

// In returns the indices (into Edges) of g's in-edges to node idx.
func (g *StmtGraph) In(idx int) []int {
	g.ensureAdjacency()
	return g.in[idx]
}

func (g *StmtGraph) ensureAdjacency() {
	if g.out != nil {
		return
	}
	g.out = make([][]int, len(g.Nodes))
	g.in = make([][]int, len(g.Nodes))
	for ei, e := range g.Edges {
		g.out[e.From] = append(g.out[e.From], ei)
		g.in[e.To] = append(g.in[e.To], ei)
	}
}

// invalidateAdjacency must be called by anything that appends to Edges or
// Nodes after construction (the reachability filter rebuilds a fresh graph
// instead, so this is only needed by tests constructing graphs by hand).
func (g *StmtGraph) invalidateAdjacency() {
	g.out = nil
	g.in = nil
}

// String gives a short human-readable node label, used by internal/debug's
// DOT export and by diagnostic logging.
func (g *StmtGraph) String(idx int) string {
	n := g.Nodes[idx]
	switch n.Kind {
	case NodeEntry:
		return "Entry"
	case NodeExit:
		return "Exit"
	default:
		return fmt.Sprintf("%T@%s", n.Stmt, n.Stmt.Src())
	}
}
