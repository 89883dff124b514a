package cfg

import (
	"log"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
)

// Builder constructs a StmtGraph from a section's syntax tree (S1): a
// single-use value that walks the tree once and accumulates nodes/edges,
// with an optional logger for diagnostic tracing.
type Builder struct {
	logger *log.Logger

	graph     *StmtGraph
	nodeOf    map[ast.Statement]int
	paraHead  map[*ast.Paragraph]int
	pendGotos []pendingGoto
}

type pendingGoto struct {
	fromIdx int
	goTo    *ast.GoToStatement
}

// NewBuilder creates a Builder. logger may be nil.
func NewBuilder(logger *log.Logger) *Builder {
	return &Builder{logger: logger}
}

// Build walks section in source order and produces its StmtGraph, or an
// UndefinedGotoTarget error if any GO TO fails to resolve.
func (b *Builder) Build(section *ast.Section) (*StmtGraph, error) {
	b.graph = &StmtGraph{SectionName: section.Name}
	b.nodeOf = make(map[ast.Statement]int)
	b.paraHead = make(map[*ast.Paragraph]int)
	b.pendGotos = nil

	b.graph.Entry = b.addNode(StmtNode{Kind: NodeEntry})
	b.graph.Exit = b.addNode(StmtNode{Kind: NodeExit})

	sectionHead := b.walkParagraphs(section.Paragraphs, 0, b.graph.Exit)
	b.addEdge(b.graph.Entry, sectionHead, EdgeSequential)

	for _, pg := range b.pendGotos {
		target := pg.goTo.ResolvedTarget
		if target == nil {
			src := pg.goTo.Src()
			return nil, domain.NewUndefinedGotoTargetError(pg.goTo.ParagraphName, src.FromLine)
		}
		targetIdx, ok := b.paraHead[target]
		if !ok {
			// Shouldn't happen: every paragraph in the section got a head
			// entry during walkParagraphs.
			return nil, domain.NewUndefinedGotoTargetError(pg.goTo.ParagraphName, pg.goTo.Src().FromLine)
		}
		b.addEdge(pg.fromIdx, targetIdx, EdgeSequential)
	}

	if b.logger != nil {
		b.logger.Printf("cfg: built StmtGraph for section %q: %d nodes, %d edges",
			section.Name, len(b.graph.Nodes), len(b.graph.Edges))
	}

	return b.graph, nil
}

func (b *Builder) addNode(n StmtNode) int {
	b.graph.Nodes = append(b.graph.Nodes, n)
	return len(b.graph.Nodes) - 1
}

func (b *Builder) addEdge(from, to int, kind EdgeKind) {
	b.graph.Edges = append(b.graph.Edges, StmtEdge{From: from, To: to, Kind: kind})
}

// walkParagraphs returns the node index a jump to paragraphs[idx] (or, for
// idx == len(paragraphs), to whatever lies after the whole section — tail)
// should target. It recurses tail-first so every later paragraph's head is
// already known before an earlier paragraph (or a backward GO TO) needs it.
func (b *Builder) walkParagraphs(paragraphs []*ast.Paragraph, idx int, tail int) int {
	if idx >= len(paragraphs) {
		return tail
	}
	nextHead := b.walkParagraphs(paragraphs, idx+1, tail)
	head := b.walkSentences(paragraphs[idx].Sentences, nextHead)
	b.paraHead[paragraphs[idx]] = head
	return head
}

func (b *Builder) walkSentences(sentences []*ast.Sentence, tail int) int {
	if len(sentences) == 0 {
		return tail
	}
	nextHead := b.walkSentences(sentences[1:], tail)
	return b.walkSeq(sentences[0].Stmts, nextHead)
}

// walkSeq assigns a node to every statement in stmts (recursing into any
// BranchStatement's Then/Else arms) and wires their sequential/branch/
// terminating/goto edges. succ is the node a fall-through off
// the end of stmts reaches — also what a trailing NEXT SENTENCE reaches,
// since in this grammar a branch consumes the rest of its sentence and there
// is nothing lexically between an IF and the sentence boundary. It returns
// the node index of stmts[0] (or succ if stmts is empty).
func (b *Builder) walkSeq(stmts []ast.Statement, succ int) int {
	next := succ
	for i := len(stmts) - 1; i >= 0; i-- {
		stmt := stmts[i]
		idx := b.addNode(StmtNode{Kind: NodeStmt, Stmt: stmt})
		b.nodeOf[stmt] = idx

		switch s := stmt.(type) {
		case *ast.BranchStatement:
			thenHead := b.walkSeq(s.Then, next)
			elseHead := b.walkSeq(s.Else, next)
			b.addEdge(idx, thenHead, EdgeBranchTrue)
			b.addEdge(idx, elseHead, EdgeBranchFalse)
		case *ast.GoToStatement:
			b.pendGotos = append(b.pendGotos, pendingGoto{fromIdx: idx, goTo: s})
		default:
			if ast.IsTerminating(stmt) {
				b.addEdge(idx, b.graph.Exit, EdgeSequential)
			} else {
				// MoveStatement, NextSentenceStatement, PerformSectionStatement,
				// UnparsedStatement: sequential fall-through to the lexical
				// successor.
				b.addEdge(idx, next, EdgeSequential)
			}
		}

		next = idx
	}
	return next
}
