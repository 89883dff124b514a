package domain

import "encoding/json"

// StructureRequest describes one `cobscn restructure` invocation: which
// syntax-tree fixtures to load and how to configure the S1-S6 pipeline.
type StructureRequest struct {
	// Paths are syntax-tree fixture files (or directories of them) to load;
	// see internal/fixture for the JSON shape consumed here. The COBOL
	// lexer/parser itself is out of scope.
	Paths []string

	// Sections restricts the run to these section names; empty means all
	// sections in every loaded Program.
	Sections []string

	OutputFormat OutputFormat
	OutputPath   string

	// KeepRawGotos, LabelPrefix, ReductionBudget mirror
	// internal/structure.Options 1:1; zero values fall back to
	// internal/config.DefaultConfig().
	KeepRawGotos    bool
	LabelPrefix     string
	ReductionBudget int

	// DumpStage, when non-empty, asks the driver to additionally emit a
	// Graphviz DOT dump of the named pipeline stage per section. One of
	// "s1", "s2", "s3", "s4", "s5". DotDir is the directory those files are
	// written to.
	DumpStage string
	DotDir    string

	MaxConcurrency int
	Verbose        bool
}

// SectionResult is the structuring outcome for one section. Tree holds the
// structured statement tree already rendered to the response's
// OutputFormat; internal/structure.Block itself is never domain-visible.
type SectionResult struct {
	Section string          `json:"section"`
	Tree    json.RawMessage `json:"tree,omitempty"`
	Text    string          `json:"text,omitempty"`

	// Gotos/Labels surface label economy as plain numbers: every GotoLabel
	// should have a matching Goto and vice versa.
	Gotos  int `json:"gotos"`
	Labels int `json:"labels"`

	Warnings []Warning `json:"warnings,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Warning is one non-fatal diagnostic: a no-op EXIT not in terminal
// position, a duplicate name after auto-mangling, an unused paragraph, an
// unparsed verb, or a trailing NEXT SENTENCE treated as an implicit exit.
// These never block reduction.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Section string `json:"section,omitempty"`
	Line    int    `json:"line,omitempty"`
}

const (
	WarnNoOpExit                 = "NOOP_EXIT"
	WarnDuplicateNameMangled     = "DUPLICATE_NAME_MANGLED"
	WarnUnusedParagraph          = "UNUSED_PARAGRAPH"
	WarnUnparsedVerb             = "UNPARSED_VERB"
	WarnNextSentenceImplicitExit = "NEXT_SENTENCE_IMPLICIT_EXIT"
	WarnUnreachableStatement     = "UNREACHABLE_STATEMENT"
)

// Summary rolls the per-section results up into run-level counters.
type Summary struct {
	SectionsProcessed int `json:"sections_processed"`
	SectionsFailed    int `json:"sections_failed"`
	GotosEmitted      int `json:"gotos_emitted"`
	LabelsEmitted     int `json:"labels_emitted"`
	WarningCount      int `json:"warning_count"`
}

// StructureResponse is the top-level result of a `cobscn restructure` run.
type StructureResponse struct {
	Results     []SectionResult `json:"results"`
	Summary     Summary         `json:"summary"`
	Errors      []string        `json:"errors,omitempty"`
	GeneratedAt string          `json:"generated_at"`
	Version     string          `json:"version"`
}

// CheckRequest configures `cobscn check`'s CI-style gate.
type CheckRequest struct {
	Paths       []string
	MaxWarnings int
	Quiet       bool
}

// CheckResponse reports whether the gate passed. ExitCode contract: 0
// clean, 1 issues found, 2 analysis failed outright.
type CheckResponse struct {
	Passed      bool     `json:"passed"`
	ExitCode    int      `json:"exit_code"`
	Issues      []string `json:"issues,omitempty"`
	GeneratedAt string   `json:"generated_at"`
}

// DotDumpRequest asks for a single named pipeline stage of a single section
// as a Graphviz DOT document.
type DotDumpRequest struct {
	Path    string
	Section string
	Stage   string // "s1".."s5"
}

// DotDumpResponse carries the rendered DOT text.
type DotDumpResponse struct {
	Section string `json:"section"`
	Stage   string `json:"stage"`
	Dot     string `json:"dot"`
}
