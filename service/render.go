package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/structure"
)

// RenderSectionResult turns one section's pipeline output into the
// domain.SectionResult the response/CLI/MCP layer actually returns. Tree
// holds the structured statement tree re-expressed as plain JSON-friendly
// values (structure.Block is an internal type, never domain-visible); Text
// holds a debug pseudocode rendering, never a real target-language emitter
// (rendering actual surface syntax is explicitly out of scope).
func RenderSectionResult(r SectionResult, format domain.OutputFormat) (domain.SectionResult, error) {
	out := r.Domain
	if r.Block == nil {
		return out, nil
	}

	gotos, labels := countGotoLabels(r.Block)
	out.Gotos = gotos
	out.Labels = labels

	switch format {
	case domain.OutputFormatText, domain.OutputFormatDOT, "":
		out.Text = renderPseudocode(r.Block)
	default:
		tree := renderNode(r.Block)
		raw, err := json.Marshal(tree)
		if err != nil {
			return out, fmt.Errorf("render section %s: %w", out.Section, err)
		}
		out.Tree = raw
	}
	return out, nil
}

// treeNode is the JSON shape every structure.Stmt variant renders to: a
// discriminated union tagged by Kind, mirroring how internal/fixture decodes
// the input side of this same kind of tree.
type treeNode struct {
	Kind  string      `json:"kind"`
	Cond  string      `json:"cond,omitempty"`
	Label string      `json:"label,omitempty"`
	Text  string      `json:"text,omitempty"`
	Then  []*treeNode `json:"then,omitempty"`
	Else  []*treeNode `json:"else,omitempty"`
	Body  []*treeNode `json:"body,omitempty"`
}

func renderNode(s structure.Stmt) *treeNode {
	switch v := s.(type) {
	case *structure.Block:
		n := &treeNode{Kind: "block"}
		n.Body = renderStmts(v.Stmts)
		return n
	case *structure.If:
		return &treeNode{
			Kind: "if",
			Cond: v.Cond.Text,
			Then: renderStmts(v.Then.Stmts),
			Else: renderStmts(v.Else.Stmts),
		}
	case *structure.While:
		return &treeNode{Kind: "while", Cond: v.Cond.Text, Body: renderStmts(v.Body.Stmts)}
	case *structure.Forever:
		return &treeNode{Kind: "forever", Body: renderStmts(v.Body.Stmts)}
	case *structure.Goto:
		return &treeNode{Kind: "goto", Label: v.Label}
	case *structure.GotoLabel:
		return &treeNode{Kind: "label", Label: v.Name}
	case *structure.Break:
		return &treeNode{Kind: "break"}
	case *structure.Continue:
		return &treeNode{Kind: "continue"}
	case *structure.Return:
		return &treeNode{Kind: "return"}
	case *structure.Cobol:
		return &treeNode{Kind: "cobol", Text: cobolText(v.Stmt)}
	default:
		return &treeNode{Kind: fmt.Sprintf("unknown(%T)", s)}
	}
}

func renderStmts(stmts []structure.Stmt) []*treeNode {
	out := make([]*treeNode, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, renderNode(s))
	}
	return out
}

func cobolText(stmt ast.Statement) string {
	switch v := stmt.(type) {
	case *ast.MoveStatement:
		return v.Text
	case *ast.PerformSectionStatement:
		return fmt.Sprintf("PERFORM %s", v.SectionName)
	case *ast.UnparsedStatement:
		return v.Text
	case *ast.ExitSectionStatement:
		return "EXIT SECTION"
	case *ast.ExitProgramStatement:
		return "EXIT PROGRAM"
	case *ast.GobackStatement:
		return "GOBACK"
	case *ast.StopRunStatement:
		return "STOP RUN"
	default:
		return fmt.Sprintf("%T", stmt)
	}
}

// renderPseudocode dumps block as indented pseudocode for --format text and
// the DOT stage-dump fallback. It is a debug aid, not a code generator: no
// attempt is made to produce syntax any compiler would accept.
func renderPseudocode(block *structure.Block) string {
	var b strings.Builder
	writeBlock(&b, block, 0)
	return b.String()
}

func writeBlock(b *strings.Builder, block *structure.Block, indent int) {
	for _, s := range block.Stmts {
		writeStmt(b, s, indent)
	}
}

func pad(b *strings.Builder, indent int) {
	b.WriteString(strings.Repeat("    ", indent))
}

func writeStmt(b *strings.Builder, s structure.Stmt, indent int) {
	switch v := s.(type) {
	case *structure.If:
		pad(b, indent)
		fmt.Fprintf(b, "if %s:\n", v.Cond.Text)
		writeBlock(b, v.Then, indent+1)
		if len(v.Else.Stmts) > 0 {
			pad(b, indent)
			b.WriteString("else:\n")
			writeBlock(b, v.Else, indent+1)
		}
	case *structure.While:
		pad(b, indent)
		fmt.Fprintf(b, "while %s:\n", v.Cond.Text)
		writeBlock(b, v.Body, indent+1)
	case *structure.Forever:
		pad(b, indent)
		b.WriteString("loop:\n")
		writeBlock(b, v.Body, indent+1)
	case *structure.Goto:
		pad(b, indent)
		fmt.Fprintf(b, "goto %s\n", v.Label)
	case *structure.GotoLabel:
		pad(b, indent)
		fmt.Fprintf(b, "%s:\n", v.Name)
	case *structure.Break:
		pad(b, indent)
		b.WriteString("break\n")
	case *structure.Continue:
		pad(b, indent)
		b.WriteString("continue\n")
	case *structure.Return:
		pad(b, indent)
		b.WriteString("return\n")
	case *structure.Cobol:
		pad(b, indent)
		fmt.Fprintf(b, "%s\n", cobolText(v.Stmt))
	}
}
