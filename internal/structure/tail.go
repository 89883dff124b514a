package structure

import "github.com/ludo-technologies/cobscn/domain"

// resolveTails drains every node the main traversal never folded inline —
// nodes reached only as a non-chosen if-target, fed by contributors spread
// across unrelated branches, or otherwise left pending. Each
// is forced to its own labelled block, in source order. A tail always has a
// label by now: whichever reduction stopped short of it emitted a Goto, and
// that Goto allocated one. A tail without a label means no Goto targets it,
// which is a structurer bug, not a user-input condition.
func (br *BlockReduction) resolveTails() ([]Stmt, error) {
	var out []Stmt
	for _, idx := range br.root.tails() {
		if !br.root.isUnreduced(idx) {
			continue // folded into an earlier tail's own reduction already
		}
		if _, ok := br.root.labels[idx]; !ok {
			return nil, domain.NewUnresolvedTailNodeError(br.root.g.Nodes[idx].Kind.String())
		}

		// runFrom emits the pre-allocated label itself when it consumes idx.
		sub := newBlockReduction(br.root, br.root.g.Nodes[idx].Scope)
		stmts, dest, err := sub.runFrom(idx, true /* driving */, true /* force past the readiness gate */)
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
		if t := sub.resolveTrailing(dest, destNone); t != nil {
			out = append(out, t)
		}
	}
	return out, nil
}
