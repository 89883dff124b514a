// Package reporter collects and renders non-fatal diagnostics: a no-op
// EXIT not in terminal position, a duplicate name after auto-mangling, an
// unused paragraph, an unparsed verb, an unreachable statement (S2), and a
// trailing NEXT SENTENCE treated as an implicit exit. None of these ever
// block reduction; they only ever accumulate as domain.Warning values
// attached to a section's result.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/cfg"
)

// WarningCollector accumulates domain.Warning values across however many
// sections a run processes. Safe for concurrent use: package service fans
// sections out across goroutines.
type WarningCollector struct {
	mu       sync.Mutex
	warnings []domain.Warning
}

// NewWarningCollector returns an empty collector.
func NewWarningCollector() *WarningCollector {
	return &WarningCollector{}
}

func (c *WarningCollector) add(w domain.Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, w)
}

// Warnings returns every warning collected so far, sorted by section then
// line for deterministic output.
func (c *WarningCollector) Warnings() []domain.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Warning, len(c.warnings))
	copy(out, c.warnings)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Code < out[j].Code
	})
	return out
}

// WarningsForSection returns only the warnings tagged with section.
func (c *WarningCollector) WarningsForSection(section string) []domain.Warning {
	var out []domain.Warning
	for _, w := range c.Warnings() {
		if w.Section == section {
			out = append(out, w)
		}
	}
	return out
}

// DuplicateNameMangled records a section or paragraph name collision
// resolved by auto-suffixing, never an error.
func (c *WarningCollector) DuplicateNameMangled(section, kind, original, mangled string, src ast.Source) {
	c.add(domain.Warning{
		Code:    domain.WarnDuplicateNameMangled,
		Message: fmt.Sprintf("duplicate %s name %q renamed to %q", kind, original, mangled),
		Section: section,
		Line:    src.FromLine,
	})
}

// UnusedParagraph records a paragraph that is never the section's entry
// point, never GO TO'd, and never PERFORMed.
func (c *WarningCollector) UnusedParagraph(section, name string, src ast.Source) {
	c.add(domain.Warning{
		Code:    domain.WarnUnusedParagraph,
		Message: fmt.Sprintf("paragraph %q is never the target of a GO TO", name),
		Section: section,
		Line:    src.FromLine,
	})
}

// UnparsedVerb records a COBOL verb the engine didn't special-case and
// carried through as ast.UnparsedStatement.
func (c *WarningCollector) UnparsedVerb(section, verb string, src ast.Source) {
	c.add(domain.Warning{
		Code:    domain.WarnUnparsedVerb,
		Message: fmt.Sprintf("unparsed verb %q carried through as a plain statement", verb),
		Section: section,
		Line:    src.FromLine,
	})
}

// NoOpExit records a terminating statement (EXIT SECTION, EXIT PROGRAM,
// GOBACK, STOP RUN) found somewhere other than the section's final
// statement: the jump it performs is real, but everything textually after
// it is dead weight the author probably didn't intend.
func (c *WarningCollector) NoOpExit(section string, src ast.Source) {
	c.add(domain.Warning{
		Code:    domain.WarnNoOpExit,
		Message: "terminating statement is not in terminal position",
		Section: section,
		Line:    src.FromLine,
	})
}

// NextSentenceImplicitExit records a NEXT SENTENCE in the section's very
// last sentence: it has no successor to jump to, so S1 treats it as an
// edge to Exit.
func (c *WarningCollector) NextSentenceImplicitExit(section string, src ast.Source) {
	c.add(domain.Warning{
		Code:    domain.WarnNextSentenceImplicitExit,
		Message: "trailing NEXT SENTENCE has no successor; treated as an implicit exit",
		Section: section,
		Line:    src.FromLine,
	})
}

// sectionReporter adapts one WarningCollector to internal/cfg.Reporter for a
// single section, so internal/cfg never needs to know about domain.Warning.
type sectionReporter struct {
	collector *WarningCollector
	section   string
}

// ForSection returns a cfg.Reporter that reports S2's unreachable statements
// into c, tagged with section.
func (c *WarningCollector) ForSection(section string) cfg.Reporter {
	return sectionReporter{collector: c, section: section}
}

func (r sectionReporter) UnreachableStatement(node cfg.StmtNode) {
	src := node.Stmt.Src()
	r.collector.add(domain.Warning{
		Code:    domain.WarnUnreachableStatement,
		Message: fmt.Sprintf("statement %T at %s is unreachable", node.Stmt, src),
		Section: r.section,
		Line:    src.FromLine,
	})
}

// Render writes every collected warning to w in the given format. DOT has no
// meaningful rendering for a flat warning list.
func (c *WarningCollector) Render(w io.Writer, format domain.OutputFormat) error {
	warnings := c.Warnings()
	switch format {
	case domain.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(warnings)
	case domain.OutputFormatYAML:
		return yaml.NewEncoder(w).Encode(warnings)
	case domain.OutputFormatText:
		return renderText(w, warnings)
	default:
		return fmt.Errorf("reporter: unsupported output format %q", format)
	}
}

func renderText(w io.Writer, warnings []domain.Warning) error {
	if len(warnings) == 0 {
		_, err := fmt.Fprintln(w, "no warnings")
		return err
	}
	for _, wr := range warnings {
		loc := wr.Section
		if wr.Line > 0 {
			loc = fmt.Sprintf("%s:%d", wr.Section, wr.Line)
		}
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", wr.Code, loc, wr.Message); err != nil {
			return err
		}
	}
	return nil
}
