// Package debug renders pipeline-stage snapshots as Graphviz DOT documents
// for `cobscn restructure --dump-stage` and the MCP dump_stage tool: a
// *multi.DirectedGraph (parallel edges allowed, matching both
// cfg.StmtGraph's and flow.Graph's multi-digraph shape) decorated with
// per-node and per-edge string attributes, marshalled with gonum's
// graph/encoding/dot.
package debug

import (
	"fmt"
	"sort"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/cfg"
	"github.com/ludo-technologies/cobscn/internal/flow"
)

// Stage names a dumpable pipeline snapshot, one artefact per stage: S1's
// raw StmtGraph, S2's reachability-filtered StmtGraph, S3's Branch/Join
// graph, S4's loop-break DAG, and S5's scope-structured graph.
type Stage string

const (
	StageS1 Stage = "s1"
	StageS2 Stage = "s2"
	StageS3 Stage = "s3"
	StageS4 Stage = "s4"
	StageS5 Stage = "s5"
)

// Snapshot bundles every intermediate graph a driver keeps while running one
// section through S1-S5, so Dump can render whichever stage was requested
// without re-running the pipeline. S3/S4/S5 must each be a separate
// flow.Graph.Clone(), since FindLoops and StructureScopes mutate their graph
// in place.
type Snapshot struct {
	S1 *cfg.StmtGraph
	S2 *cfg.StmtGraph
	S3 *flow.Graph
	S4 *flow.Graph
	S5 *flow.Graph
}

// Dump renders the named stage of snap as a DOT document.
func Dump(stage Stage, snap Snapshot) (string, error) {
	switch stage {
	case StageS1:
		if snap.S1 == nil {
			return "", fmt.Errorf("stage %q not captured", stage)
		}
		return DumpStmtGraph(string(stage), snap.S1)
	case StageS2:
		if snap.S2 == nil {
			return "", fmt.Errorf("stage %q not captured", stage)
		}
		return DumpStmtGraph(string(stage), snap.S2)
	case StageS3:
		if snap.S3 == nil {
			return "", fmt.Errorf("stage %q not captured", stage)
		}
		return DumpFlowGraph(string(stage), snap.S3)
	case StageS4:
		if snap.S4 == nil {
			return "", fmt.Errorf("stage %q not captured", stage)
		}
		return DumpFlowGraph(string(stage), snap.S4)
	case StageS5:
		if snap.S5 == nil {
			return "", fmt.Errorf("stage %q not captured", stage)
		}
		return DumpFlowGraph(string(stage), snap.S5)
	default:
		return "", fmt.Errorf("unknown stage %q", stage)
	}
}

// attrs is a sorted set of DOT attributes.
type attrs map[string]string

func (a attrs) Attributes() []encoding.Attribute {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]encoding.Attribute, 0, len(keys))
	for _, k := range keys {
		out = append(out, encoding.Attribute{Key: k, Value: a[k]})
	}
	return out
}

type dotNode struct {
	graph.Node
	id string
	attrs
}

func (n *dotNode) DOTID() string      { return n.id }
func (n *dotNode) SetDOTID(id string) { n.id = id }

func (n *dotNode) Attributes() []encoding.Attribute { return n.attrs.Attributes() }

func (n *dotNode) SetAttribute(a encoding.Attribute) error {
	n.attrs[a.Key] = a.Value
	return nil
}

type dotLine struct {
	graph.Line
	attrs
}

func (l *dotLine) Attributes() []encoding.Attribute { return l.attrs.Attributes() }

func (l *dotLine) SetAttribute(a encoding.Attribute) error {
	l.attrs[a.Key] = a.Value
	return nil
}

// dotGraph wraps a *multi.DirectedGraph (parallel edges are ordinary here,
// e.g. both arms of an IF reaching the same join) with a stage title used
// as the rendered graph's DOT ID.
type dotGraph struct {
	*multi.DirectedGraph
	title string
}

func newDotGraph(title string) *dotGraph {
	return &dotGraph{DirectedGraph: multi.NewDirectedGraph(), title: title}
}

func (g *dotGraph) DOTID() string { return g.title }

func (g *dotGraph) addNode(id string, a attrs) *dotNode {
	n := &dotNode{Node: g.DirectedGraph.NewNode(), id: id, attrs: a}
	g.DirectedGraph.AddNode(n)
	return n
}

func (g *dotGraph) addEdge(from, to *dotNode, a attrs) {
	l := &dotLine{Line: g.DirectedGraph.NewLine(from, to), attrs: a}
	g.DirectedGraph.SetLine(l)
}

func marshal(g *dotGraph) (string, error) {
	data, err := dot.MarshalMulti(g, g.DOTID(), "", "\t")
	if err != nil {
		return "", pkgerrors.Wrap(err, "marshal dot")
	}
	return string(data), nil
}

// DumpStmtGraph renders a cfg.StmtGraph (S1's raw graph, or S2's
// reachability-filtered graph) as DOT.
func DumpStmtGraph(title string, g *cfg.StmtGraph) (string, error) {
	dg := newDotGraph(title)
	nodes := make([]*dotNode, len(g.Nodes))
	for i := range g.Nodes {
		nodes[i] = dg.addNode(fmt.Sprintf("n%d", i), attrs{"label": g.String(i)})
	}
	for _, e := range g.Edges {
		a := attrs{}
		if cond, ok := e.Condition(); ok {
			a["label"] = fmt.Sprintf("%t", cond)
		}
		dg.addEdge(nodes[e.From], nodes[e.To], a)
	}
	return marshal(dg)
}

// DumpFlowGraph renders a flow.Graph snapshot (S3's branch/join graph, S4's
// loop-break DAG, or S5's scope-structured graph) as DOT. Dead edges are
// skipped. Scope coloring only carries information from S4 onward; before
// FindLoops runs every node's Scope is still flow.RootScope and no node
// gets a color.
func DumpFlowGraph(title string, g *flow.Graph) (string, error) {
	dg := newDotGraph(title)
	nodes := make([]*dotNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = dg.addNode(fmt.Sprintf("n%d", i), flowNodeAttrs(n))
	}
	for _, e := range g.Edges {
		if e.Dead {
			continue
		}
		dg.addEdge(nodes[e.From], nodes[e.To], flowEdgeAttrs(g, e))
	}
	return marshal(dg)
}

func flowNodeAttrs(n flow.Node) attrs {
	label := n.Kind.String()
	if n.Stmt != nil {
		label = fmt.Sprintf("%s\\n%s", label, n.Stmt.Src())
	}
	a := attrs{"label": label}
	if n.Scope != flow.RootScope {
		a["style"] = "filled"
		a["fillcolor"] = scopeColor(n.Scope)
	}
	return a
}

var scopePalette = []string{"lightblue", "lightgreen", "lightyellow", "lightpink", "lightgray", "lightcyan"}

func scopeColor(scope int) string {
	if scope < 0 {
		scope = -scope
	}
	return scopePalette[scope%len(scopePalette)]
}

// flowEdgeAttrs labels an edge with the branch condition it is taken under
// ("if <cond>:" for the true arm, "if not <cond>:" for the false arm) plus
// the straight-line statements collapsed onto it.
func flowEdgeAttrs(g *flow.Graph, e flow.Edge) attrs {
	var parts []string
	if e.Cond != nil {
		cond := "?"
		if c := g.Nodes[e.From].Cond; c != nil {
			cond = c.Text
			if c.Inverted {
				cond = "not " + cond
			}
		}
		if !*e.Cond {
			cond = "not " + cond
		}
		parts = append(parts, fmt.Sprintf("if %s:", cond))
	}
	for _, s := range e.Stmts {
		parts = append(parts, stmtLabel(s))
	}
	if len(parts) == 0 {
		return attrs{}
	}
	return attrs{"label": strings.Join(parts, "\\n")}
}

func stmtLabel(s ast.Statement) string {
	switch v := s.(type) {
	case *ast.MoveStatement:
		return v.Text
	case *ast.PerformSectionStatement:
		return "PERFORM " + v.SectionName
	case *ast.GoToStatement:
		return "GO TO " + v.ParagraphName
	case *ast.NextSentenceStatement:
		return "NEXT SENTENCE"
	case *ast.UnparsedStatement:
		if v.Text != "" {
			return v.Text
		}
		return v.Verb
	case *ast.ExitSectionStatement:
		return "EXIT SECTION"
	case *ast.ExitProgramStatement:
		return "EXIT PROGRAM"
	case *ast.GobackStatement:
		return "GOBACK"
	case *ast.StopRunStatement:
		return "STOP RUN"
	default:
		return fmt.Sprintf("%T", s)
	}
}
