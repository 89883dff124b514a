package cfg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/cobscn/internal/ast"
)

func src(line int) ast.Source {
	return ast.Source{File: "t.cbl", FromLine: line, ToLine: line, FromChar: line * 10}
}

func section(name string, paras ...*ast.Paragraph) *ast.Section {
	return &ast.Section{Name: name, Paragraphs: paras, Source: src(1)}
}

func TestBuilder_EmptySection(t *testing.T) {
	sec := section("MAIN-SECTION")

	g, err := NewBuilder(nil).Build(sec)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2, "only Entry/Exit for an empty section")
	require.Len(t, g.Edges, 1)
	assert.Equal(t, g.Entry, g.Edges[0].From)
	assert.Equal(t, g.Exit, g.Edges[0].To)
}

func TestBuilder_SequentialFallthrough(t *testing.T) {
	m1 := &ast.MoveStatement{Text: "a"}
	m1.Source = src(2)
	m2 := &ast.MoveStatement{Text: "b"}
	m2.Source = src(3)

	para := &ast.Paragraph{
		Name:      "P1",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{m1, m2}}},
	}
	sec := section("MAIN-SECTION", para)

	g, err := NewBuilder(nil).Build(sec)
	require.NoError(t, err)

	require.Len(t, g.Nodes, 4) // Entry, Exit, m1, m2
	// Entry -> m1 -> m2 -> Exit
	m1Idx := indexOfStmt(g, m1)
	m2Idx := indexOfStmt(g, m2)
	require.NotEqual(t, -1, m1Idx)
	require.NotEqual(t, -1, m2Idx)

	assert.True(t, hasEdge(g, g.Entry, m1Idx))
	assert.True(t, hasEdge(g, m1Idx, m2Idx))
	assert.True(t, hasEdge(g, m2Idx, g.Exit))
}

func TestBuilder_SuperfluousGotoOverFallthroughParagraph(t *testing.T) {
	// perform a. go to p2. p2. perform b. exit.
	performA := &ast.UnparsedStatement{Verb: "PERFORM", Text: "A"}
	performA.Source = src(2)
	goToP2 := &ast.GoToStatement{ParagraphName: "P2"}
	goToP2.Source = src(3)
	performB := &ast.UnparsedStatement{Verb: "PERFORM", Text: "B"}
	performB.Source = src(5)
	exitSec := &ast.ExitSectionStatement{}
	exitSec.Source = src(6)

	p1 := &ast.Paragraph{
		Name:      "P1",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{performA, goToP2}}},
	}
	p2 := &ast.Paragraph{
		Name:      "P2",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{performB, exitSec}}},
	}
	p1.NextPara = p2

	goToP2.ResolvedTarget = p2

	sec := section("MAIN-SECTION", p1, p2)

	g, err := NewBuilder(nil).Build(sec)
	require.NoError(t, err)

	goToIdx := indexOfStmt(g, goToP2)
	performBIdx := indexOfStmt(g, performB)
	exitIdx := indexOfStmt(g, exitSec)

	assert.True(t, hasEdge(g, goToIdx, performBIdx), "goto p2 must land on perform b")
	assert.True(t, hasEdge(g, exitIdx, g.Exit), "EXIT SECTION must edge to Exit")
}

func TestBuilder_Branch(t *testing.T) {
	thenStmt := &ast.UnparsedStatement{Verb: "PERFORM", Text: "T"}
	thenStmt.Source = src(3)
	elseStmt := &ast.UnparsedStatement{Verb: "PERFORM", Text: "F"}
	elseStmt.Source = src(4)

	branch := &ast.BranchStatement{
		Condition: ast.Condition{Text: "A > 0"},
		Then:      []ast.Statement{thenStmt},
		Else:      []ast.Statement{elseStmt},
	}
	branch.Source = src(2)
	exitSec := &ast.ExitSectionStatement{}
	exitSec.Source = src(5)

	para := &ast.Paragraph{
		Name:      "P1",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{branch}}, {Stmts: []ast.Statement{exitSec}}},
	}
	sec := section("MAIN-SECTION", para)

	g, err := NewBuilder(nil).Build(sec)
	require.NoError(t, err)

	branchIdx := indexOfStmt(g, branch)
	thenIdx := indexOfStmt(g, thenStmt)
	elseIdx := indexOfStmt(g, elseStmt)
	exitIdx := indexOfStmt(g, exitSec)

	outs := g.Out(branchIdx)
	require.Len(t, outs, 2, "a Branch statement must have exactly two out-edges")

	var sawTrue, sawFalse bool
	for _, ei := range outs {
		e := g.Edges[ei]
		cond, ok := e.Condition()
		require.True(t, ok)
		if cond {
			sawTrue = true
			assert.Equal(t, thenIdx, e.To)
		} else {
			sawFalse = true
			assert.Equal(t, elseIdx, e.To)
		}
	}
	assert.True(t, sawTrue)
	assert.True(t, sawFalse)
	assert.True(t, hasEdge(g, thenIdx, exitIdx))
	assert.True(t, hasEdge(g, elseIdx, exitIdx))
}

func TestBuilder_UndefinedGotoTarget(t *testing.T) {
	goTo := &ast.GoToStatement{ParagraphName: "NOPE"}
	goTo.Source = src(2)
	para := &ast.Paragraph{
		Name:      "P1",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{goTo}}},
	}
	sec := section("MAIN-SECTION", para)

	_, err := NewBuilder(nil).Build(sec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNDEFINED_GOTO_TARGET")
}

func indexOfStmt(g *StmtGraph, s ast.Statement) int {
	for i, n := range g.Nodes {
		if n.Kind == NodeStmt && n.Stmt == s {
			return i
		}
	}
	return -1
}

func hasEdge(g *StmtGraph, from, to int) bool {
	for _, ei := range g.Out(from) {
		if g.Edges[ei].To == to {
			return true
		}
	}
	return false
}
