package reporter

import "github.com/ludo-technologies/cobscn/internal/ast"

// AnalyzeSection records the warnings that are pure AST-level
// properties, independent of the S1-S6 graph pipeline: a terminating
// statement that isn't in terminal position, a paragraph (other than the
// first) that no GO TO names,
// an unparsed verb, and a trailing NEXT SENTENCE with no successor.
// S2's unreachable-statement warnings are reported separately
// through c.ForSection, since only internal/cfg's reachability DFS can tell
// which statements are actually dead in the control-flow sense.
func AnalyzeSection(c *WarningCollector, sec *ast.Section) {
	stmts := flattenStatements(sec)
	for i, stmt := range stmts {
		if i < len(stmts)-1 && ast.IsTerminating(stmt) {
			c.NoOpExit(sec.Name, stmt.Src())
		}
		if u, ok := stmt.(*ast.UnparsedStatement); ok {
			c.UnparsedVerb(sec.Name, u.Verb, u.Src())
		}
	}

	reached := reachedParagraphs(sec)
	for _, p := range sec.Paragraphs {
		if p.Name == "" || p == sec.FirstPara {
			continue
		}
		if !reached[p.Name] {
			c.UnusedParagraph(sec.Name, p.Name, p.Source)
		}
	}

	for _, p := range sec.Paragraphs {
		last := p.NextPara == nil
		for _, sent := range p.Sentences {
			if sent.NextSentence != nil || !last {
				continue
			}
			stack := append([]ast.Statement(nil), sent.Stmts...)
			for len(stack) > 0 {
				stmt := stack[0]
				stack = stack[1:]
				if b, ok := stmt.(*ast.BranchStatement); ok {
					stack = append(append(stack, b.Then...), b.Else...)
				} else if _, ok := stmt.(*ast.NextSentenceStatement); ok {
					c.NextSentenceImplicitExit(sec.Name, stmt.Src())
				}
			}
		}
	}
}

// flattenStatements walks every paragraph/sentence/branch-arm of sec in
// lexical order, so the caller can reason about "is this the last
// statement" without re-deriving the tree shape.
func flattenStatements(sec *ast.Section) []ast.Statement {
	var out []ast.Statement
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			out = append(out, stmt)
			if b, ok := stmt.(*ast.BranchStatement); ok {
				walk(b.Then)
				walk(b.Else)
			}
		}
	}
	for _, p := range sec.Paragraphs {
		for _, sent := range p.Sentences {
			walk(sent.Stmts)
		}
	}
	return out
}

// reachedParagraphs returns the set of paragraph names targeted by some GO
// TO within sec.
func reachedParagraphs(sec *ast.Section) map[string]bool {
	reached := make(map[string]bool)
	var walk func(stmts []ast.Statement)
	walk = func(stmts []ast.Statement) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.GoToStatement:
				reached[s.ParagraphName] = true
			case *ast.BranchStatement:
				walk(s.Then)
				walk(s.Else)
			}
		}
	}
	for _, p := range sec.Paragraphs {
		for _, sent := range p.Sentences {
			walk(sent.Stmts)
		}
	}
	return reached
}
