package structure

import (
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// reduceLoop reduces a Loop node's body in its own scope and shapes a
// While (if S5 classified it with a header condition) or Forever.
// It returns the loop statement and the node the parent traversal
// should continue at: the successor of the loop's LoopExit, or destNone if
// the loop has none (an unconditional loop with no escape).
func (br *BlockReduction) reduceLoop(loopIdx int) (Stmt, int, error) {
	g := br.root.g
	loopNode := g.Nodes[loopIdx]

	var cond Condition
	var bodyStart flow.Edge
	classified := loopNode.Cond != nil

	if classified {
		cond = *loopNode.Cond
		headerEdge := g.Edges[g.Out(loopIdx)[0]]
		headerIdx := headerEdge.To

		// The header Branch belongs to the loop's own test, not a nested if:
		// consume it silently and resume at its inside (non-exit) arm.
		br.root.consume(headerIdx)

		var insideEdge flow.Edge
		for _, ei := range g.Out(headerIdx) {
			e := g.Edges[ei]
			if g.Nodes[e.To].Kind == flow.KindLoopExit && g.Nodes[e.To].LoopIdx == loopIdx {
				continue
			}
			insideEdge = e
		}
		bodyStart = insideEdge
	} else {
		bodyStart = g.Edges[g.Out(loopIdx)[0]]
	}

	bodyStmts, bodyDest, err := br.runEdge(loopIdx, bodyStart, true /* driving: sole path into the body */)
	if err != nil {
		return nil, destNone, err
	}

	// A spliced Join header carries the statement that runs at the top of
	// every iteration; it belongs ahead of whatever the body edge folded.
	if loopNode.Stmt != nil {
		bodyStmts = append(br.convert([]ast.Statement{loopNode.Stmt}), bodyStmts...)
	}

	continueIdx := br.findInLoop(loopIdx, flow.KindContinueLoop)
	if t := br.resolveTrailing(bodyDest, continueIdx); t != nil {
		bodyStmts = append(bodyStmts, t)
	}

	body := &Block{Stmts: bodyStmts}

	var loopStmt Stmt
	if classified {
		loopStmt = &While{Cond: cond, Body: body}
	} else {
		loopStmt = &Forever{Body: body}
	}

	exitIdx := br.findInLoop(loopIdx, flow.KindLoopExit)
	if exitIdx == destNone {
		return loopStmt, destNone, nil
	}
	outs := g.Out(exitIdx)
	if len(outs) == 0 {
		return loopStmt, destNone, nil
	}
	return loopStmt, g.Edges[outs[0]].To, nil
}

// findInLoop returns the index of loopIdx's ContinueLoop or LoopExit marker,
// or destNone if it has none (an unconditional loop escaped only by the
// section Exit, or a loop with no break at all).
func (br *BlockReduction) findInLoop(loopIdx int, kind flow.Kind) int {
	for i, n := range br.root.g.Nodes {
		if n.Kind == kind && n.LoopIdx == loopIdx {
			return i
		}
	}
	return destNone
}
