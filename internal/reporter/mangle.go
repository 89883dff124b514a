package reporter

import (
	"fmt"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
)

// MangleDuplicateNames resolves name collisions: a section or
// paragraph name collision is never fatal. The first occurrence of a name
// keeps it; every later occurrence is renamed with domain's "#N" separator
// and reported through c as a WarnDuplicateNameMangled warning. Since every
// GO TO/PERFORM reference in this tree was already resolved to a pointer by
// internal/fixture (never re-looked-up by name), renaming here is safe:
// nothing downstream keys on Section.Name/Paragraph.Name except diagnostics
// and the structured tree's own label synthesis.
func MangleDuplicateNames(c *WarningCollector, prog *ast.Program) {
	if prog == nil || prog.ProcedureDivision == nil {
		return
	}
	seenSections := make(map[string]int)
	for _, sec := range prog.ProcedureDivision.Sections {
		if sec.Name == "" {
			continue
		}
		seenSections[sec.Name]++
		if n := seenSections[sec.Name]; n > 1 {
			mangled := mangledName(sec.Name, n)
			c.DuplicateNameMangled(sec.Name, "section", sec.Name, mangled, sec.Source)
			sec.Name = mangled
		}
	}
	for _, sec := range prog.ProcedureDivision.Sections {
		seenParas := make(map[string]int)
		for _, p := range sec.Paragraphs {
			if p.Name == "" {
				continue
			}
			seenParas[p.Name]++
			if n := seenParas[p.Name]; n > 1 {
				mangled := mangledName(p.Name, n)
				c.DuplicateNameMangled(sec.Name, "paragraph", p.Name, mangled, p.Source)
				p.Name = mangled
			}
		}
	}
}

func mangledName(base string, occurrence int) string {
	return fmt.Sprintf("%s%s%d", base, domain.DefaultDuplicateNameSeparator, occurrence)
}
