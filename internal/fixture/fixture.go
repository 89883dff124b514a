// Package fixture loads the JSON encoding of a pre-built COBOL syntax tree
// (internal/ast) from disk. The lexer/parser that actually produces this
// tree from COBOL source text is an external collaborator out of scope for
// this repository; cobscn's CLI and MCP server
// consume a tree that some other tool already parsed and serialized, the
// same way the core's tests build trees with literal ast.* constructors
// instead of parsing text.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ludo-technologies/cobscn/internal/ast"
)

// Load reads path and decodes it into an *ast.Program.
func Load(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture %s: %w", path, err)
	}
	return Decode(data, path)
}

// Decode parses raw JSON fixture bytes into an *ast.Program. file names the
// source for Source.File population when the document doesn't set one
// itself.
func Decode(data []byte, file string) (*ast.Program, error) {
	var doc programDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", file, err)
	}
	return doc.build(file)
}

// --- JSON document shape -----------------------------------------------

type sourceDoc struct {
	File     string `json:"file"`
	FromChar int    `json:"from_char"`
	ToChar   int    `json:"to_char"`
	FromLine int    `json:"from_line"`
	ToLine   int    `json:"to_line"`
}

func (s sourceDoc) build(fallbackFile string) ast.Source {
	file := s.File
	if file == "" {
		file = fallbackFile
	}
	return ast.Source{File: file, FromChar: s.FromChar, ToChar: s.ToChar, FromLine: s.FromLine, ToLine: s.ToLine}
}

type programDoc struct {
	ProcedureDivision struct {
		Sections []sectionDoc `json:"sections"`
	} `json:"procedure_division"`
}

type sectionDoc struct {
	Name         string         `json:"name"`
	Source       sourceDoc      `json:"source"`
	UsedSections []string       `json:"used_sections"`
	Paragraphs   []paragraphDoc `json:"paragraphs"`
}

type paragraphDoc struct {
	Name      string        `json:"name"`
	Source    sourceDoc     `json:"source"`
	Sentences []sentenceDoc `json:"sentences"`
}

type sentenceDoc struct {
	Source sourceDoc `json:"source"`
	Stmts  []stmtDoc `json:"stmts"`
}

// stmtDoc is a discriminated union over every recognised statement kind.
// Type selects which fields are meaningful; unused fields are simply absent
// from a given document.
type stmtDoc struct {
	Type   string    `json:"type"`
	Source sourceDoc `json:"source"`

	// branch
	Condition       string     `json:"condition,omitempty"`
	ConditionSource *sourceDoc `json:"condition_source,omitempty"`
	Then            []stmtDoc  `json:"then,omitempty"`
	Else            []stmtDoc  `json:"else,omitempty"`

	// goto
	Paragraph string `json:"paragraph,omitempty"`

	// move / unparsed
	Verb string `json:"verb,omitempty"`
	Text string `json:"text,omitempty"`

	// perform_section
	Section string `json:"section,omitempty"`
}

// --- building ------------------------------------------------------------

func (d programDoc) build(file string) (*ast.Program, error) {
	prog := &ast.Program{ProcedureDivision: &ast.ProcedureDivision{}}

	sections := make([]*ast.Section, 0, len(d.ProcedureDivision.Sections))
	paraByName := make([]map[string]*ast.Paragraph, len(d.ProcedureDivision.Sections))

	// Pass 1: skeleton sections/paragraphs so GO TO and PERFORM targets in
	// any sentence can resolve regardless of lexical order.
	for si, sd := range d.ProcedureDivision.Sections {
		sec := &ast.Section{Name: sd.Name, UsedSections: sd.UsedSections, Source: sd.Source.build(file)}
		names := make(map[string]*ast.Paragraph, len(sd.Paragraphs))
		paras := make([]*ast.Paragraph, 0, len(sd.Paragraphs))
		for _, pd := range sd.Paragraphs {
			p := &ast.Paragraph{Name: pd.Name, Source: pd.Source.build(file)}
			paras = append(paras, p)
			if pd.Name != "" {
				names[pd.Name] = p
			}
		}
		for i, p := range paras {
			if i+1 < len(paras) {
				p.NextPara = paras[i+1]
			}
		}
		sec.Paragraphs = paras
		if len(paras) > 0 {
			sec.FirstPara = paras[0]
		}
		sections = append(sections, sec)
		paraByName[si] = names
	}
	prog.ProcedureDivision.Sections = sections

	sectionByName := make(map[string]*ast.Section, len(sections))
	for _, s := range sections {
		if s.Name != "" {
			sectionByName[s.Name] = s
		}
	}

	// Pass 2: fill in statements, resolving GO TO within the section and
	// PERFORM <section> across the whole program.
	for si, sd := range d.ProcedureDivision.Sections {
		for pi, pd := range sd.Paragraphs {
			p := sections[si].Paragraphs[pi]
			sents := make([]*ast.Sentence, 0, len(pd.Sentences))
			for _, sentd := range pd.Sentences {
				stmts, err := buildStmts(sentd.Stmts, file, paraByName[si], sectionByName)
				if err != nil {
					return nil, fmt.Errorf("section %s, paragraph %s: %w", sd.Name, pd.Name, err)
				}
				sents = append(sents, &ast.Sentence{Stmts: stmts, Source: sentd.Source.build(file)})
			}
			for i := 0; i+1 < len(sents); i++ {
				sents[i].NextSentence = sents[i+1]
			}
			p.Sentences = sents
		}
	}

	return prog, nil
}

func buildStmts(docs []stmtDoc, file string, paras map[string]*ast.Paragraph, sectionsByName map[string]*ast.Section) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(docs))
	for _, sd := range docs {
		stmt, err := buildStmt(sd, file, paras, sectionsByName)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

func buildStmt(sd stmtDoc, file string, paras map[string]*ast.Paragraph, sectionsByName map[string]*ast.Section) (ast.Statement, error) {
	src := sd.Source.build(file)
	switch sd.Type {
	case "branch", "if":
		then, err := buildStmts(sd.Then, file, paras, sectionsByName)
		if err != nil {
			return nil, err
		}
		els, err := buildStmts(sd.Else, file, paras, sectionsByName)
		if err != nil {
			return nil, err
		}
		condSrc := src
		if sd.ConditionSource != nil {
			condSrc = sd.ConditionSource.build(file)
		}
		return ast.NewBranchStatement(src, ast.Condition{Text: sd.Condition, Source: condSrc}, then, els), nil
	case "goto", "go_to":
		return ast.NewGoToStatement(src, sd.Paragraph, paras[sd.Paragraph]), nil
	case "next_sentence":
		return ast.NewNextSentenceStatement(src), nil
	case "move":
		return ast.NewMoveStatement(src, sd.Text), nil
	case "perform_section", "perform":
		return ast.NewPerformSectionStatement(src, sd.Section, sectionsByName[sd.Section]), nil
	case "unparsed", "":
		return ast.NewUnparsedStatement(src, sd.Verb, sd.Text), nil
	case "exit_section":
		return ast.NewExitSectionStatement(src), nil
	case "exit_program":
		return ast.NewExitProgramStatement(src), nil
	case "goback":
		return ast.NewGobackStatement(src), nil
	case "stop_run":
		return ast.NewStopRunStatement(src), nil
	default:
		return nil, fmt.Errorf("unknown statement type %q", sd.Type)
	}
}
