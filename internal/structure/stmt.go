// Package structure holds the output statement tree and the S6
// block-reduction engine — the central algorithm of this codebase: turning
// the scoped DAG internal/flow produces into a tree of structured
// statements (Block, If, While, Forever, Goto, GotoLabel, Break, Continue,
// Return), favouring the cheapest-to-read shape at every branch point.
package structure

import (
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// Condition is reused directly from internal/flow:
// both the Loop header's while-condition and an If's condition are the same
// invertible reference to a COBOL boolean expression.
type Condition = flow.Condition

// Stmt is the closed set of structured-statement variants a Block may
// hold. Modeled as a tagged sum via an unexported marker method, not
// inheritance.
type Stmt interface {
	stmtTreeNode()
}

// Block is an ordered sequence of structured statements — the unit every
// reduction ultimately produces.
type Block struct {
	Stmts []Stmt
}

func (*Block) stmtTreeNode() {}

// If is a structured two-armed conditional. Both Then and Else are always
// present (possibly empty); an absent COBOL else-arm renders as an empty
// Block, never a nil one, so callers never need a nil check.
type If struct {
	Cond Condition
	Then *Block
	Else *Block
}

func (*If) stmtTreeNode() {}

// While is a header-tested loop: the Loop node's condition, absorbed during
// S5 pass A, guards entry to Body.
type While struct {
	Cond Condition
	Body *Block
}

func (*While) stmtTreeNode() {}

// Forever is a loop with no header test; every exit is an explicit Break.
// Loops S5 didn't classify as while-headed stay Forever.
type Forever struct {
	Body *Block
}

func (*Forever) stmtTreeNode() {}

// Goto is an unavoidable cross-structure jump to a synthesised or
// paragraph-derived label.
type Goto struct {
	Label string
}

func (*Goto) stmtTreeNode() {}

// GotoLabel marks the landing point of a Goto. Paragraph is non-nil when the
// label was derived from a COBOL paragraph name rather than synthesised from
// source position.
type GotoLabel struct {
	Name      string
	Paragraph *ast.Paragraph
}

func (*GotoLabel) stmtTreeNode() {}

// Break exits the innermost enclosing While/Forever (a loop's LoopExit
// target).
type Break struct{}

func (*Break) stmtTreeNode() {}

// Continue jumps back to the innermost enclosing loop's header (a
// ContinueLoop target).
type Continue struct{}

func (*Continue) stmtTreeNode() {}

// Return exits the section (an Exit target).
type Return struct{}

func (*Return) stmtTreeNode() {}

// Cobol passes an opaque COBOL statement through unchanged — MOVE,
// PERFORM <section>, and any UnparsedStatement.
type Cobol struct {
	Stmt ast.Statement
}

func (*Cobol) stmtTreeNode() {}
