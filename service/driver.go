// Package service hosts the per-section driver that runs the structuring
// pipeline over a loaded *ast.Program and fans sections out across a
// bounded worker pool. Sections are independent, so a failure in one never
// stops the batch; its error is recorded on that section's result and the
// remaining sections keep going.
package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"bitbucket.org/zombiezen/cardcpx/natsort"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/cfg"
	"github.com/ludo-technologies/cobscn/internal/debug"
	"github.com/ludo-technologies/cobscn/internal/flow"
	"github.com/ludo-technologies/cobscn/internal/reporter"
	"github.com/ludo-technologies/cobscn/internal/structure"
	"github.com/ludo-technologies/cobscn/internal/version"
)

// StructureService runs the S1-S6 pipeline over one or more loaded programs
// and renders the result as a domain.StructureResponse.
type StructureService interface {
	Run(ctx context.Context, progs []*ast.Program, req domain.StructureRequest) (*domain.StructureResponse, error)
}

// Driver is the default StructureService: one ExecutableTask per section,
// fanned out through a domain.ParallelExecutor.
type Driver struct {
	executor domain.ParallelExecutor
	progress domain.ProgressReporter
}

// NewDriver builds a Driver with the default parallel executor. progress may
// be nil (no progress reporting).
func NewDriver(progress domain.ProgressReporter) *Driver {
	return &Driver{executor: NewParallelExecutor(), progress: progress}
}

// sectionJob is the unit of work one ExecutableTask performs: run the full
// pipeline for a single section and stash its SectionResult (including the
// debug.Snapshot used by --dump-stage) at a pre-assigned slot.
type sectionJob struct {
	sec     *ast.Section
	opts    structure.Options
	collect *reporter.WarningCollector

	progress domain.ProgressReporter
	index    int
	total    int

	result SectionResult
}

// SectionResult pairs a domain.SectionResult with the optional raw Block
// tree (an internal type, deliberately kept out of the domain layer) and
// any captured debug snapshot.
type SectionResult struct {
	Domain domain.SectionResult
	Block  *structure.Block
	Snap   debug.Snapshot
}

func (j *sectionJob) Name() string { return j.sec.Name }

func (j *sectionJob) IsEnabled() bool { return true }

func (j *sectionJob) Execute(ctx context.Context) (interface{}, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	reporter.AnalyzeSection(j.collect, j.sec)

	if j.progress != nil {
		defer j.progress.UpdateProgress(j.sec.Name, j.index, j.total)
	}

	block, snap, err := RunSection(j.sec, j.opts, j.collect)
	warnings := j.collect.WarningsForSection(j.sec.Name)
	if err != nil {
		j.result = SectionResult{Domain: domain.SectionResult{
			Section:  j.sec.Name,
			Warnings: warnings,
			Error:    err.Error(),
		}}
		return nil, fmt.Errorf("section %s: %w", j.sec.Name, err)
	}

	j.result = SectionResult{
		Domain: domain.SectionResult{
			Section:  j.sec.Name,
			Warnings: warnings,
		},
		Block: block,
		Snap:  snap,
	}
	return nil, nil
}

// RunSection drives one section through S1-S6, returning the structured
// tree and a Snapshot of every intermediate graph for --dump-stage/MCP
// dump_stage use.
func RunSection(sec *ast.Section, opts structure.Options, collect *reporter.WarningCollector) (*structure.Block, debug.Snapshot, error) {
	var snap debug.Snapshot

	builder := cfg.NewBuilder(nil)
	sg, err := builder.Build(sec)
	if err != nil {
		return nil, snap, err
	}
	snap.S1 = sg

	filter := cfg.NewReachabilityFilter(collect.ForSection(sec.Name))
	reached := filter.Filter(sg)
	snap.S2 = reached

	fg := flow.Build(reached)
	snap.S3 = fg.Clone()

	flow.FindLoops(fg)
	snap.S4 = fg.Clone()

	flow.StructureScopes(fg)
	snap.S5 = fg.Clone()

	block, err := structure.Reduce(sec, fg, opts)
	if err != nil {
		return nil, snap, err
	}
	return block, snap, nil
}

// countGotoLabels counts emitted gotos and labels; every label should pair
// with at least one goto and vice versa, so the two numbers belong together
// in the summary.
func countGotoLabels(b *structure.Block) (gotos, labels int) {
	var walk func(stmts []structure.Stmt)
	walk = func(stmts []structure.Stmt) {
		for _, s := range stmts {
			switch v := s.(type) {
			case *structure.Goto:
				gotos++
			case *structure.GotoLabel:
				labels++
			case *structure.If:
				walk(v.Then.Stmts)
				walk(v.Else.Stmts)
			case *structure.While:
				walk(v.Body.Stmts)
			case *structure.Forever:
				walk(v.Body.Stmts)
			}
		}
	}
	if b != nil {
		walk(b.Stmts)
	}
	return gotos, labels
}

// Run executes req against every section of every loaded program (or only
// req.Sections, when non-empty), collecting results in section order
// regardless of which goroutine finishes first.
func (d *Driver) Run(ctx context.Context, progs []*ast.Program, req domain.StructureRequest) (*domain.StructureResponse, error) {
	opts := structure.Options{
		KeepRawGotos:    req.KeepRawGotos,
		LabelPrefix:     req.LabelPrefix,
		ReductionBudget: req.ReductionBudget,
	}
	if opts.LabelPrefix == "" {
		opts.LabelPrefix = domain.DefaultLabelPrefix
	}

	collect := reporter.NewWarningCollector()

	var sections []*ast.Section
	for _, prog := range progs {
		if prog == nil || prog.ProcedureDivision == nil {
			continue
		}
		reporter.MangleDuplicateNames(collect, prog)
		for _, sec := range prog.ProcedureDivision.Sections {
			if !wantsSection(req.Sections, sec.Name) {
				continue
			}
			sections = append(sections, sec)
		}
	}

	jobs := make([]*sectionJob, len(sections))
	tasks := make([]domain.ExecutableTask, len(sections))
	for i, sec := range sections {
		jobs[i] = &sectionJob{
			sec: sec, opts: opts, collect: collect,
			progress: d.progress, index: i, total: len(sections),
		}
		tasks[i] = jobs[i]
	}

	if d.progress != nil {
		d.progress.StartProgress(len(sections))
	}

	if max := req.MaxConcurrency; max > 0 {
		d.executor.SetMaxConcurrency(max)
	}
	runErr := d.executor.Execute(ctx, tasks)

	if d.progress != nil {
		d.progress.FinishProgress()
	}

	resp := &domain.StructureResponse{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Short(),
	}
	for _, j := range jobs {
		rendered, err := RenderSectionResult(j.result, req.OutputFormat)
		if err != nil && rendered.Error == "" {
			rendered.Error = err.Error()
		}
		if req.DumpStage != "" && rendered.Error == "" {
			if path, err := writeDotDump(j.sec.Name, req.DumpStage, req.DotDir, j.result.Snap); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: dump-stage: %s", j.sec.Name, err))
			} else {
				rendered.Text = path
			}
		}
		resp.Results = append(resp.Results, rendered)
		resp.Summary.SectionsProcessed++
		if rendered.Error != "" {
			resp.Summary.SectionsFailed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s", j.sec.Name, rendered.Error))
		}
		resp.Summary.GotosEmitted += rendered.Gotos
		resp.Summary.LabelsEmitted += rendered.Labels
		resp.Summary.WarningCount += len(rendered.Warnings)
	}
	// Natural order so SEC2 sorts before SEC10, the way a COBOL listing
	// numbers its sections.
	sort.Slice(resp.Results, func(i, k int) bool { return natsort.Less(resp.Results[i].Section, resp.Results[k].Section) })

	if req.Verbose {
		_ = collect.Render(os.Stderr, domain.OutputFormatText)
	}

	if runErr != nil && resp.Summary.SectionsFailed == 0 {
		// executor-level failure (cancellation, timeout) rather than a
		// per-section one already captured above.
		resp.Errors = append(resp.Errors, runErr.Error())
	}
	return resp, nil
}

// writeDotDump renders the requested stage of snap and writes it to
// dotDir/<section>.<stage>.dot, returning the path written.
func writeDotDump(section, stage, dotDir string, snap debug.Snapshot) (string, error) {
	if dotDir == "" {
		dotDir = domain.DefaultDotDir
	}
	dot, err := debug.Dump(debug.Stage(stage), snap)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dotDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dotDir, fmt.Sprintf("%s.%s.dot", section, stage))
	if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func wantsSection(filter []string, name string) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == name {
			return true
		}
	}
	return false
}
