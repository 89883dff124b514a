package structure

import (
	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// destNone marks "no pending node".
const destNone = -1

// BlockReduction folds one scope's worth of the flow graph into a Block,
// recursing into child BlockReductions for if-branches and loop bodies.
// All BlockReductions over one section share a single RootReductionScope.
type BlockReduction struct {
	root  *RootReductionScope
	scope int
}

func newBlockReduction(root *RootReductionScope, scope int) *BlockReduction {
	return &BlockReduction{root: root, scope: scope}
}

// Reduce runs S6 over a scoped DAG (the output of internal/flow.Build +
// FindLoops + StructureScopes) and returns the section's structured
// statement tree.
func Reduce(sec *ast.Section, g *flow.Graph, opts Options) (*Block, error) {
	root := newRootReductionScope(g, sec, opts)
	br := newBlockReduction(root, flow.RootScope)

	stmts, dest, err := br.run(g.Entry, true /* driving */)
	if err != nil {
		return nil, err
	}
	if trailing := br.resolveTrailing(dest, destNone); trailing != nil {
		stmts = append(stmts, trailing)
	}
	tail, err := br.resolveTails()
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, tail...)
	if leftover := root.tails(); len(leftover) > 0 {
		return nil, domain.NewUnresolvedTailNodeError(g.Nodes[leftover[0]].Kind.String())
	}
	return &Block{Stmts: stmts}, nil
}

// run is the main traversal: fold nodes into stmts starting
// at node, stopping at Exit/ContinueLoop/LoopExit/GotoNode, at a node whose
// in-scope in-edges aren't all folded yet, or at a node already consumed by
// an earlier path (the "already reduced" case).
//
// driving distinguishes the one call chain entitled to actually dispatch a
// contended node (in-degree >= 2) from the sibling probes that merely
// record their arrival and stop: an if's own continuation, a loop body's
// entry, and the top-level section call are all driving; an if's then/else
// exploration is not, since dispatching their shared join inline — inside
// whichever arm happens to supply the join's last missing contributor —
// would plant its content in the wrong arm instead of after the if; the
// join-readiness test only makes sense evaluated once, at the node the
// parent actually resumes at. An uncontended node (in-degree
// <= 1) never has this ambiguity and always dispatches immediately.
func (br *BlockReduction) run(start int, driving bool) (stmts []Stmt, dest int, err error) {
	return br.runFrom(start, driving, false)
}

// runFrom is run's implementation. force bypasses the readiness gate for
// start itself — used exactly once, by resolveTails, to forcibly dispatch a
// node the main pass left pending regardless of whether every formal
// contributor ever arrived.
func (br *BlockReduction) runFrom(start int, driving, force bool) (stmts []Stmt, dest int, err error) {
	g := br.root.g
	node := start
	fresh := true
	for {
		if node == destNone {
			return stmts, destNone, nil
		}

		switch g.Nodes[node].Kind {
		case flow.KindExit, flow.KindContinueLoop, flow.KindLoopExit, flow.KindGotoNode:
			return stmts, node, nil
		}

		if !force {
			if !br.root.isUnreduced(node) {
				if fresh {
					br.root.arrive(node)
				}
				return stmts, node, nil
			}

			contended := br.root.totalIn[node] >= 2
			if contended && !driving {
				// Only a freshly traversed edge counts as an arrival; a
				// probe resuming at an if's chosen target walked no new
				// edge and must not inflate the join-readiness count.
				if fresh {
					br.root.arrive(node)
				}
				return stmts, node, nil
			}

			var ready bool
			if fresh {
				ready = br.root.arrive(node)
			} else {
				ready = br.root.reducedIn[node] >= br.root.totalIn[node]
			}
			if !ready {
				return stmts, node, nil
			}
		}
		force = false

		br.root.consume(node)
		if br.root.budgetExceeded() {
			return nil, destNone, domain.NewReductionBudgetExceededError(br.root.opts.ReductionBudget)
		}
		if lbl, ok := br.root.labels[node]; ok {
			stmts = append(stmts, lbl)
		}

		switch g.Nodes[node].Kind {
		case flow.KindEntry, flow.KindJoin:
			if stmt := g.Nodes[node].Stmt; stmt != nil {
				stmts = append(stmts, br.convert([]ast.Statement{stmt})...)
			}
			e := g.Edges[g.Out(node)[0]]
			stmts = append(stmts, br.convert(e.Stmts)...)
			node, fresh = e.To, true

		case flow.KindBranch:
			ifStmt, tail, next, ierr := br.reduceIf(node)
			if ierr != nil {
				return nil, destNone, ierr
			}
			stmts = append(stmts, ifStmt)
			stmts = append(stmts, tail...)
			node, fresh = next, false

		case flow.KindLoop:
			loopStmt, next, lerr := br.reduceLoop(node)
			if lerr != nil {
				return nil, destNone, lerr
			}
			stmts = append(stmts, loopStmt)
			node, fresh = next, true
		}
	}
}

// runEdge folds an edge's straight-line statements followed by whatever
// run() produces from its destination, in a single child block.
func (br *BlockReduction) runEdge(scope int, e flow.Edge, driving bool) (stmts []Stmt, dest int, err error) {
	child := newBlockReduction(br.root, scope)
	tail, dest, err := child.run(e.To, driving)
	if err != nil {
		return nil, destNone, err
	}
	stmts = append(br.convert(e.Stmts), tail...)
	return stmts, dest, nil
}

// convert turns a straight-line run of COBOL statements into pass-through
// tree nodes, dropping GOTO/NEXT SENTENCE/terminators whose control-flow
// effect the graph already captures, unless KeepRawGotos
// is set.
func (br *BlockReduction) convert(raw []ast.Statement) []Stmt {
	if len(raw) == 0 {
		return nil
	}
	out := make([]Stmt, 0, len(raw))
	for _, s := range raw {
		if !br.root.opts.KeepRawGotos && isControlOnly(s) {
			continue
		}
		out = append(out, &Cobol{Stmt: s})
	}
	return out
}

func isControlOnly(s ast.Statement) bool {
	switch s.(type) {
	case *ast.GoToStatement, *ast.NextSentenceStatement:
		return true
	default:
		return ast.IsTerminating(s)
	}
}

// resolveTrailing returns the statement (nil if none needed) to append so a
// block whose traversal stopped at dest correctly continues at target.
func (br *BlockReduction) resolveTrailing(dest, target int) Stmt {
	if dest == destNone || dest == target {
		return nil
	}
	g := br.root.g
	switch g.Nodes[dest].Kind {
	case flow.KindExit:
		return &Return{}
	case flow.KindContinueLoop:
		return &Continue{}
	case flow.KindLoopExit:
		return &Break{}
	default: // GotoNode, or any other in-scope node awaiting its own turn
		return &Goto{Label: br.root.labelFor(br.gotoLabelTarget(dest)).Name}
	}
}

// gotoLabelTarget returns the node a Goto referencing dest should actually
// be labelled for: dest's sole out-edge target when dest is a GotoNode
// placeholder, else dest itself.
func (br *BlockReduction) gotoLabelTarget(dest int) int {
	g := br.root.g
	if g.Nodes[dest].Kind == flow.KindGotoNode {
		if outs := g.Out(dest); len(outs) == 1 {
			return g.Edges[outs[0]].To
		}
	}
	return dest
}
