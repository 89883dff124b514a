package structure

import (
	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// reduceIf reduces a Branch node's two arms and shapes the result into the
// cheapest-to-read If. It returns the If statement itself,
// any statements that must follow it in the *parent* block (when a shape
// drops an arm's content out of the if), and the node the parent traversal
// should continue at.
func (br *BlockReduction) reduceIf(branchIdx int) (ifStmt Stmt, tail []Stmt, next int, err error) {
	g := br.root.g
	outs := g.Out(branchIdx)
	var trueEdge, falseEdge flow.Edge
	for _, ei := range outs {
		e := g.Edges[ei]
		if e.Cond != nil && *e.Cond {
			trueEdge = e
		} else {
			falseEdge = e
		}
	}
	cond := *g.Nodes[branchIdx].Cond

	thenStmts, thenDest, err := br.runEdge(br.scope, trueEdge, false /* driving: sibling probe */)
	if err != nil {
		return nil, nil, destNone, err
	}
	elseStmts, elseDest, err := br.runEdge(br.scope, falseEdge, false /* driving: sibling probe */)
	if err != nil {
		return nil, nil, destNone, err
	}

	target := br.chooseIfTarget(thenDest, elseDest)

	if t := br.resolveTrailing(thenDest, target); t != nil {
		thenStmts = append(thenStmts, t)
	}
	if t := br.resolveTrailing(elseDest, target); t != nil {
		elseStmts = append(elseStmts, t)
	}

	then := &Block{Stmts: thenStmts}
	els := &Block{Stmts: elseStmts}

	shaped, extra := shapeIf(cond, then, els)
	return shaped, extra, target, nil
}

// chooseIfTarget picks the node the parent traversal resumes at after an
// if, in fixed priority order: the non-jump dispatchable node both (or
// either) arm actually reaches, preferring the one more arms agree on and
// breaking ties by source position; failing that a shared ContinueLoop, then
// GotoNode, then LoopExit; failing that the section Exit.
func (br *BlockReduction) chooseIfTarget(thenDest, elseDest int) int {
	g := br.root.g
	isOrdinary := func(idx int) bool {
		if idx == destNone {
			return false
		}
		switch g.Nodes[idx].Kind {
		case flow.KindExit, flow.KindContinueLoop, flow.KindGotoNode, flow.KindLoopExit:
			return false
		default:
			return true
		}
	}

	var candidates []int
	if isOrdinary(thenDest) {
		candidates = append(candidates, thenDest)
	}
	if isOrdinary(elseDest) && elseDest != thenDest {
		candidates = append(candidates, elseDest)
	}
	if len(candidates) > 0 {
		count := func(idx int) int {
			n := 0
			if thenDest == idx {
				n++
			}
			if elseDest == idx {
				n++
			}
			return n
		}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if count(c) > count(best) || (count(c) == count(best) && g.Nodes[c].Before(g.Nodes[best])) {
				best = c
			}
		}
		return best
	}

	byKind := func(k flow.Kind) int {
		for _, idx := range []int{thenDest, elseDest} {
			if idx != destNone && g.Nodes[idx].Kind == k {
				return idx
			}
		}
		return destNone
	}
	if idx := byKind(flow.KindContinueLoop); idx != destNone {
		return idx
	}
	if idx := byKind(flow.KindGotoNode); idx != destNone {
		return idx
	}
	if idx := byKind(flow.KindLoopExit); idx != destNone {
		return idx
	}
	return g.Exit
}

// shapeIf applies the cost-directed catalogue of branch shapes and
// returns the cheapest. then and else are already complete (each carries
// whatever trailing jump resolveTrailing decided it needs). extra holds
// statements a shape pulled out of an arm into the parent block, so the
// caller can append them after the If.
func shapeIf(cond Condition, then, els *Block) (Stmt, []Stmt) {
	type candidate struct {
		cost  int
		shape Stmt
		extra []Stmt
	}
	var best *candidate
	consider := func(c candidate) {
		if best == nil || c.cost < best.cost {
			cc := c
			best = &cc
		}
	}

	thenEndsInJump := endsInJump(then.Stmts)
	elseEndsInJump := endsInJump(els.Stmts)
	thenIsChain := isElseIfChain(els) // "losing an else chain" always refers to the arm being discarded

	// Null: keep the if exactly as built.
	if len(then.Stmts) > 0 {
		cost := size(then)
		if !isElseIfChain(els) {
			cost += size(els)
		}
		if thenEndsInJump {
			cost += domain.DefaultThenEndsInJumpPenalty
		}
		consider(candidate{cost: cost, shape: &If{Cond: cond, Then: then, Else: els}})
	}

	// RemoveElse: then already diverges, so else's content becomes whatever
	// follows the if in the parent block.
	if thenEndsInJump {
		cost := size(then)
		if thenIsChain {
			cost += domain.DefaultLoseElseChainPenalty
		}
		consider(candidate{
			cost:  cost,
			shape: &If{Cond: cond, Then: then, Else: &Block{}},
			extra: els.Stmts,
		})
	}

	// FlipToRemoveElse: the else arm diverges (or then is empty), so invert
	// the test and swap arms, dropping the new else (original then).
	if elseEndsInJump || len(then.Stmts) == 0 {
		cost := size(els) + domain.DefaultFlipPenalty
		if isElseIfChain(then) {
			cost += domain.DefaultLoseElseChainPenalty
		}
		consider(candidate{
			cost:  cost,
			shape: &If{Cond: cond.Invert(), Then: els, Else: &Block{}},
			extra: then.Stmts,
		})
	}

	// JumpFromThen: equivalent shape to Null, costed by then's size plus
	// the cost of its trailing jump — included for cost-catalogue
	// fidelity; never structurally distinct from Null.
	if len(then.Stmts) > 0 {
		cost := size(then) + jumpCost(then.Stmts)
		if thenIsChain {
			cost += domain.DefaultLoseElseChainPenalty
		}
		consider(candidate{cost: cost, shape: &If{Cond: cond, Then: then, Else: els}})
	}

	// JumpFromFlippedElse: invert and swap, but keep both arms.
	{
		cost := size(els) + domain.DefaultFlipPenalty + jumpCost(els.Stmts)
		consider(candidate{cost: cost, shape: &If{Cond: cond.Invert(), Then: els, Else: then}})
	}

	return best.shape, best.extra
}

func size(b *Block) int {
	n := 0
	for _, s := range b.Stmts {
		n++
		switch t := s.(type) {
		case *If:
			n += size(t.Then) + size(t.Else)
		case *While:
			n += size(t.Body)
		case *Forever:
			n += size(t.Body)
		}
	}
	return n
}

func jumpCost(stmts []Stmt) int {
	if len(stmts) == 0 {
		return 0
	}
	switch stmts[len(stmts)-1].(type) {
	case *Return:
		return domain.DefaultExitJumpCost
	case *Break:
		return domain.DefaultLoopExitJumpCost
	case *Continue:
		return domain.DefaultContinueLoopJumpCost
	case *Goto:
		return domain.DefaultGotoJumpCost
	default:
		return 0
	}
}

func endsInJump(stmts []Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	switch stmts[len(stmts)-1].(type) {
	case *Return, *Break, *Continue, *Goto:
		return true
	default:
		return false
	}
}

// isElseIfChain reports whether b is exactly one nested If — the shape that
// renders as "else if" rather than a braced else block, and so is exempted
// from the size penalty of keeping an else arm.
func isElseIfChain(b *Block) bool {
	if len(b.Stmts) != 1 {
		return false
	}
	_, ok := b.Stmts[0].(*If)
	return ok
}
