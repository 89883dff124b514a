package flow

import (
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/cfg"
)

// Build performs S3: classify every reachable statement as
// Branch, Join (in-degree >= 2), or straight; create flow nodes for Entry,
// Exit, and the first two categories; trace every anchor's out-edges through
// runs of straight statements to the next anchor (or Exit), collapsing the
// run onto the edge's Stmts list.
func Build(sg *cfg.StmtGraph) *Graph {
	b := &builder{sg: sg, fg: &Graph{SectionName: sg.SectionName}, anchorOf: make(map[int]int)}
	b.createAnchors()
	b.traceAllEdges()
	return b.fg
}

type builder struct {
	sg       *cfg.StmtGraph
	fg       *Graph
	anchorOf map[int]int // StmtGraph node idx -> flow.Graph node idx
}

func (b *builder) createAnchors() {
	b.fg.Entry = b.fg.AddNode(NewEntryNode())
	b.anchorOf[b.sg.Entry] = b.fg.Entry
	b.fg.Exit = b.fg.AddNode(NewExitNode())
	b.anchorOf[b.sg.Exit] = b.fg.Exit

	for idx, n := range b.sg.Nodes {
		if idx == b.sg.Entry || idx == b.sg.Exit {
			continue
		}
		if br, ok := n.Stmt.(*ast.BranchStatement); ok {
			cond := Condition{Text: br.Condition.Text, Source: br.Condition.Source}
			b.anchorOf[idx] = b.fg.AddNode(NewBranchNode(n.Stmt, cond))
			continue
		}
		if len(b.sg.In(idx)) >= 2 {
			b.anchorOf[idx] = b.fg.AddNode(NewJoinNode(n.Stmt))
		}
	}
}

func (b *builder) traceAllEdges() {
	// Arena order, not map order: the edge list's order feeds every later
	// "first out-edge" lookup, so it must be identical across runs.
	for stmtIdx := 0; stmtIdx < len(b.sg.Nodes); stmtIdx++ {
		flowIdx, ok := b.anchorOf[stmtIdx]
		if !ok {
			continue
		}
		n := b.sg.Nodes[stmtIdx]
		switch n.Kind {
		case cfg.NodeExit:
			continue
		case cfg.NodeEntry:
			outs := b.sg.Out(stmtIdx)
			dest, stmts := b.trace(stmtIdx, outs[0])
			b.fg.AddEdge(Edge{From: flowIdx, To: dest, Stmts: stmts})
		default:
			if _, isBranch := n.Stmt.(*ast.BranchStatement); isBranch {
				for _, ei := range b.sg.Out(stmtIdx) {
					cond, _ := b.sg.Edges[ei].Condition()
					dest, stmts := b.trace(stmtIdx, ei)
					c := cond
					b.fg.AddEdge(Edge{From: flowIdx, To: dest, Cond: &c, Stmts: stmts})
				}
			} else {
				outs := b.sg.Out(stmtIdx)
				dest, stmts := b.trace(stmtIdx, outs[0])
				b.fg.AddEdge(Edge{From: flowIdx, To: dest, Stmts: stmts})
			}
		}
	}
}

// trace walks forward from edgeIdx (an out-edge of the anchor at origin)
// through straight statements until it reaches another anchor or Exit,
// returning that anchor's flow-node index and the straight statements
// collected along the way. A trace that revisits origin itself yields a
// self-loop.
func (b *builder) trace(origin int, edgeIdx int) (destFlowIdx int, stmts []ast.Statement) {
	node := b.sg.Edges[edgeIdx].To
	for {
		if fidx, ok := b.anchorOf[node]; ok {
			return fidx, stmts
		}
		n := b.sg.Nodes[node]
		stmts = append(stmts, n.Stmt)
		outs := b.sg.Out(node)
		node = b.sg.Edges[outs[0]].To
	}
}
