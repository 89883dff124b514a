package flow

import "github.com/ludo-technologies/cobscn/internal/ast"

// NewEntryNode returns the section's singleton Entry node value.
func NewEntryNode() Node {
	return Node{Kind: KindEntry, isEntry: true, Scope: RootScope, LoopIdx: RootScope}
}

// NewExitNode returns the section's singleton Exit node value.
func NewExitNode() Node {
	return Node{Kind: KindExit, isExit: true, Scope: RootScope, LoopIdx: RootScope}
}

// NewBranchNode wraps a COBOL IF statement as a Branch node.
func NewBranchNode(stmt ast.Statement, cond Condition) Node {
	c := cond
	return Node{Kind: KindBranch, pos: stmt.Src(), Stmt: stmt, Cond: &c, Scope: RootScope, LoopIdx: RootScope}
}

// NewJoinNode wraps a statement with in-degree >= 2 as a Join node.
func NewJoinNode(stmt ast.Statement) Node {
	return Node{Kind: KindJoin, pos: stmt.Src(), Stmt: stmt, Scope: RootScope, LoopIdx: RootScope}
}

// NewLoopNode creates a Loop header at a given source position (inherited
// from the component header it supplants or splices next to). Cond stays
// nil until S5 pass A classifies the loop as while-headed.
func NewLoopNode(pos ast.Source) Node {
	return Node{Kind: KindLoop, pos: pos, Scope: RootScope, LoopIdx: RootScope}
}

// NewContinueLoopNode creates the back-jump marker for loopIdx.
func NewContinueLoopNode(pos ast.Source, loopIdx int) Node {
	return Node{Kind: KindContinueLoop, pos: pos, Scope: loopIdx, LoopIdx: loopIdx}
}

// NewLoopExitNode creates the structured-break target for loopIdx, living in
// the loop's parent scope.
func NewLoopExitNode(pos ast.Source, loopIdx, parentScope int) Node {
	return Node{Kind: KindLoopExit, pos: pos, Scope: parentScope, LoopIdx: loopIdx}
}

// NewGotoNode creates a cross-scope jump placeholder living in scope,
// referring to target.
func NewGotoNode(target ast.Statement, targetPos ast.Source, scope int) Node {
	return Node{Kind: KindGotoNode, pos: targetPos, GotoTarget: target, Scope: scope, LoopIdx: RootScope}
}
