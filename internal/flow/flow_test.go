package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/cfg"
)

func src(line int) ast.Source {
	return ast.Source{File: "t.cbl", FromLine: line, ToLine: line, FromChar: line * 10}
}

func buildFlow(t *testing.T, sec *ast.Section) *Graph {
	t.Helper()
	sg, err := cfg.NewBuilder(nil).Build(sec)
	require.NoError(t, err)
	return Build(sg)
}

func branchNode(g *Graph, stmt ast.Statement) int {
	for i, n := range g.Nodes {
		if n.Stmt == stmt {
			return i
		}
	}
	return -1
}

func TestBuild_BranchAndJoin(t *testing.T) {
	// if a>0 perform t else perform f. exit.
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
	sec := &ast.Section{Name: "MAIN", Paragraphs: []*ast.Paragraph{para}}

	g := buildFlow(t, sec)

	branchIdx := branchNode(g, branch)
	require.NotEqual(t, -1, branchIdx)
	require.NotNil(t, g.Nodes[branchIdx].Cond)
	require.Equal(t, KindBranch, g.Nodes[branchIdx].Kind)

	outs := g.Out(branchIdx)
	require.Len(t, outs, 2)

	joinIdx := branchNode(g, exitSec)

	var sawTrue, sawFalse bool
	for _, ei := range outs {
		e := g.Edges[ei]
		require.NotNil(t, e.Cond)
		if *e.Cond {
			sawTrue = true
			require.Len(t, e.Stmts, 1)
			assert.Same(t, thenStmt, e.Stmts[0])
		} else {
			sawFalse = true
			require.Len(t, e.Stmts, 1)
			assert.Same(t, elseStmt, e.Stmts[0])
		}
		assert.Equal(t, joinIdx, e.To, "both arms fall through to the same Exit-bound join")
	}
	assert.True(t, sawTrue)
	assert.True(t, sawFalse)
}

// TestFlow_GotoBreakPatternBecomesWhile exercises the goto-break idiom end
// to end through S3, S4, and S5:
//
//	loop. if x>y go to done. if x>z go to done. perform b. go to loop.
//	done. perform c. exit.
func TestFlow_GotoBreakPatternBecomesWhile(t *testing.T) {
	branch1 := &ast.BranchStatement{Condition: ast.Condition{Text: "x>y"}}
	branch1.Source = src(2)
	gotoDone1 := &ast.GoToStatement{ParagraphName: "DONE"}
	gotoDone1.Source = src(2)
	branch1.Then = []ast.Statement{gotoDone1}

	branch2 := &ast.BranchStatement{Condition: ast.Condition{Text: "x>z"}}
	branch2.Source = src(3)
	gotoDone2 := &ast.GoToStatement{ParagraphName: "DONE"}
	gotoDone2.Source = src(3)
	branch2.Then = []ast.Statement{gotoDone2}

	performB := &ast.UnparsedStatement{Verb: "PERFORM", Text: "B"}
	performB.Source = src(4)
	gotoLoop := &ast.GoToStatement{ParagraphName: "LOOP"}
	gotoLoop.Source = src(5)

	performC := &ast.UnparsedStatement{Verb: "PERFORM", Text: "C"}
	performC.Source = src(7)
	exitSec := &ast.ExitSectionStatement{}
	exitSec.Source = src(8)

	loopPara := &ast.Paragraph{
		Name: "LOOP",
		Sentences: []*ast.Sentence{
			{Stmts: []ast.Statement{branch1}},
			{Stmts: []ast.Statement{branch2}},
			{Stmts: []ast.Statement{performB}},
			{Stmts: []ast.Statement{gotoLoop}},
		},
	}
	donePara := &ast.Paragraph{
		Name: "DONE",
		Sentences: []*ast.Sentence{
			{Stmts: []ast.Statement{performC}},
			{Stmts: []ast.Statement{exitSec}},
		},
	}
	loopPara.NextPara = donePara
	gotoDone1.ResolvedTarget = donePara
	gotoDone2.ResolvedTarget = donePara
	gotoLoop.ResolvedTarget = loopPara

	sec := &ast.Section{Name: "MAIN", Paragraphs: []*ast.Paragraph{loopPara, donePara}}

	g := buildFlow(t, sec)
	FindLoops(g)
	StructureScopes(g)

	var loopIdx = -1
	for i, n := range g.Nodes {
		if n.Kind == KindLoop {
			require.Equal(t, -1, loopIdx, "exactly one loop expected")
			loopIdx = i
		}
	}
	require.NotEqual(t, -1, loopIdx)

	loop := g.Nodes[loopIdx]
	require.NotNil(t, loop.Cond, "goto-break pattern must classify as while")
	assert.Equal(t, "x>y", loop.Cond.Text)
	assert.True(t, loop.Cond.Inverted, "body runs when x>y is false")

	loopOuts := g.Out(loopIdx)
	require.Len(t, loopOuts, 1)
	bodyHead := g.Edges[loopOuts[0]].To
	assert.Equal(t, KindBranch, g.Nodes[bodyHead].Kind)
	assert.Same(t, branch1, g.Nodes[bodyHead].Stmt)

	b1Outs := g.Out(bodyHead)
	require.Len(t, b1Outs, 2)
	var b1ExitIdx, b1InnerIdx int
	for _, ei := range b1Outs {
		e := g.Edges[ei]
		if *e.Cond {
			b1ExitIdx = e.To
		} else {
			b1InnerIdx = e.To
		}
	}
	assert.Equal(t, KindLoopExit, g.Nodes[b1ExitIdx].Kind)
	assert.Same(t, branch2, g.Nodes[b1InnerIdx].Stmt)

	b2Outs := g.Out(b1InnerIdx)
	require.Len(t, b2Outs, 2)
	var b2ExitIdx int
	var b2Body Edge
	for _, ei := range b2Outs {
		e := g.Edges[ei]
		if *e.Cond {
			b2ExitIdx = e.To
		} else {
			b2Body = e
		}
	}
	assert.Equal(t, b1ExitIdx, b2ExitIdx, "both go-to-done escapes share one LoopExit")
	require.Len(t, b2Body.Stmts, 2)
	assert.Same(t, performB, b2Body.Stmts[0])

	assert.Equal(t, KindContinueLoop, g.Nodes[b2Body.To].Kind)

	leOuts := g.Out(b1ExitIdx)
	require.Len(t, leOuts, 1)
	assert.Same(t, performC, g.Nodes[g.Edges[leOuts[0]].To].Stmt)
}

// TestFlow_ContinueInsideNestedIf exercises a back-jump buried two ifs deep:
//
//	loop. perform a. if x>y if x>z go to loop. perform b. go to loop.
func TestFlow_ContinueInsideNestedIf(t *testing.T) {
	performA := &ast.UnparsedStatement{Verb: "PERFORM", Text: "A"}
	performA.Source = src(2)

	outer := &ast.BranchStatement{Condition: ast.Condition{Text: "x>y"}}
	outer.Source = src(3)
	inner := &ast.BranchStatement{Condition: ast.Condition{Text: "x>z"}}
	inner.Source = src(3)
	gotoLoop1 := &ast.GoToStatement{ParagraphName: "LOOP"}
	gotoLoop1.Source = src(3)
	inner.Then = []ast.Statement{gotoLoop1}
	outer.Then = []ast.Statement{inner}

	performB := &ast.UnparsedStatement{Verb: "PERFORM", Text: "B"}
	performB.Source = src(4)
	gotoLoop2 := &ast.GoToStatement{ParagraphName: "LOOP"}
	gotoLoop2.Source = src(5)

	loopPara := &ast.Paragraph{
		Name: "LOOP",
		Sentences: []*ast.Sentence{
			{Stmts: []ast.Statement{performA}},
			{Stmts: []ast.Statement{outer}},
			{Stmts: []ast.Statement{performB}},
			{Stmts: []ast.Statement{gotoLoop2}},
		},
	}
	gotoLoop1.ResolvedTarget = loopPara
	gotoLoop2.ResolvedTarget = loopPara

	sec := &ast.Section{Name: "MAIN", Paragraphs: []*ast.Paragraph{loopPara}}

	g := buildFlow(t, sec)
	FindLoops(g)
	StructureScopes(g)

	var loopIdx = -1
	for i, n := range g.Nodes {
		if n.Kind == KindLoop {
			loopIdx = i
		}
	}
	require.NotEqual(t, -1, loopIdx)
	assert.Nil(t, g.Nodes[loopIdx].Cond, "no qualifying while-edge; stays Forever")

	innerIdx := branchNode(g, inner)
	require.NotEqual(t, -1, innerIdx)
	innerOuts := g.Out(innerIdx)
	require.Len(t, innerOuts, 2)
	for _, ei := range innerOuts {
		e := g.Edges[ei]
		if *e.Cond {
			assert.Equal(t, KindContinueLoop, g.Nodes[e.To].Kind, "go to loop from inside becomes a continue")
		}
	}
}

func TestFindLoops_SelfLoop(t *testing.T) {
	performX := &ast.UnparsedStatement{Verb: "PERFORM", Text: "X"}
	performX.Source = src(2)
	branch := &ast.BranchStatement{Condition: ast.Condition{Text: "done"}}
	branch.Source = src(3)
	gotoTop := &ast.GoToStatement{ParagraphName: "P1"}
	gotoTop.Source = src(3)
	branch.Else = []ast.Statement{gotoTop}

	para := &ast.Paragraph{
		Name:      "P1",
		Sentences: []*ast.Sentence{{Stmts: []ast.Statement{performX, branch}}},
	}
	gotoTop.ResolvedTarget = para
	sec := &ast.Section{Name: "MAIN", Paragraphs: []*ast.Paragraph{para}}

	g := buildFlow(t, sec)
	FindLoops(g)

	var sawLoop bool
	for _, n := range g.Nodes {
		if n.Kind == KindLoop {
			sawLoop = true
		}
	}
	assert.True(t, sawLoop)
}
