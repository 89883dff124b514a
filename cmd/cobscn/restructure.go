package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/discover"
	"github.com/ludo-technologies/cobscn/internal/fixture"
	"github.com/ludo-technologies/cobscn/service"
	"github.com/spf13/cobra"
)

// RestructureCommand runs the S1-S6 pipeline over syntax-tree fixtures and
// prints the structured statement tree per section.
type RestructureCommand struct {
	format     string
	outputPath string
	configFile string
	verbose    bool

	sections     []string
	dumpStage    string
	dotDir       string
	budget       int
	keepRawGotos bool
	labelPrefix  string
	maxWorkers   int
}

// NewRestructureCommand creates a new restructure command
func NewRestructureCommand() *RestructureCommand {
	return &RestructureCommand{
		format:      "text",
		labelPrefix: domain.DefaultLabelPrefix,
	}
}

// CreateCobraCommand creates the cobra command for the structuring pipeline
func (c *RestructureCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restructure [paths...]",
		Short: "Rebuild structured control flow from parsed COBOL sections",
		Long: `Run the control-flow structuring pipeline over pre-parsed COBOL
syntax-tree fixtures (*.json) and print each section as a structured
statement tree of if/while/break/continue, with a labelled goto only where
no structured shape reaches the same targets.

A path may be a fixture file, a directory (walked recursively, honouring a
.gitignore at its root), or a doublestar glob like 'fixtures/**/*.json'.

Examples:
  # Restructure every fixture under the current directory
  cobscn restructure .

  # Only two sections, as JSON
  cobscn restructure --sections MAIN-LOGIC,CLEANUP --format json tree.json

  # Dump the S4 loop-break DAG of every section as Graphviz DOT
  cobscn restructure --dump-stage s4 --dot-dir out/dot tree.json`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runRestructure,
	}

	cmd.Flags().StringVarP(&c.format, "format", "o", "text", "Output format: text, json, yaml")
	cmd.Flags().StringVar(&c.outputPath, "output", "", "Write output to file instead of stdout")
	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")

	cmd.Flags().StringSliceVar(&c.sections, "sections", nil, "Restrict to these section names (default: all)")
	cmd.Flags().StringVar(&c.dumpStage, "dump-stage", "", "Also dump this pipeline stage as DOT: s1, s2, s3, s4, s5")
	cmd.Flags().StringVar(&c.dotDir, "dot-dir", "", "Directory for --dump-stage DOT files")
	cmd.Flags().IntVar(&c.budget, "budget", domain.DefaultReductionBudget, "Reduction step budget per section, 0 = unlimited")
	cmd.Flags().BoolVar(&c.keepRawGotos, "keep-raw-gotos", false, "Keep every GO TO in the output instead of eliding captured ones")
	cmd.Flags().StringVar(&c.labelPrefix, "label-prefix", domain.DefaultLabelPrefix, "Prefix for synthesized goto labels")
	cmd.Flags().IntVar(&c.maxWorkers, "max-concurrency", 0, "Sections processed in parallel, 0 = GOMAXPROCS")

	return cmd
}

// buildRequest merges the configuration file with explicitly set flags,
// file values losing to flags the user actually typed.
func (c *RestructureCommand) buildRequest(cmd *cobra.Command, startDir string) (domain.StructureRequest, error) {
	format, err := domain.ParseOutputFormat(c.format)
	if err != nil {
		return domain.StructureRequest{}, err
	}
	if format == domain.OutputFormatDOT {
		return domain.StructureRequest{}, domain.NewInvalidInputError("--format dot is only valid with --dump-stage; use --dump-stage s1..s5", nil)
	}

	loader := service.NewStructureConfigurationLoaderWithFlags(GetExplicitFlags(cmd))
	base, err := loader.LoadConfigFromDir(c.configFile, startDir)
	if err != nil {
		return domain.StructureRequest{}, err
	}

	override := &domain.StructureRequest{
		Sections:        c.sections,
		OutputFormat:    format,
		OutputPath:      c.outputPath,
		KeepRawGotos:    c.keepRawGotos,
		LabelPrefix:     c.labelPrefix,
		ReductionBudget: c.budget,
		DumpStage:       c.dumpStage,
		DotDir:          c.dotDir,
		MaxConcurrency:  c.maxWorkers,
		Verbose:         c.verbose,
	}
	return *loader.MergeConfig(base, override), nil
}

// runRestructure executes the restructure command
func (c *RestructureCommand) runRestructure(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	// Verbosity lives on the root command's persistent flags.
	if cmd.Parent() != nil {
		c.verbose, _ = cmd.Parent().Flags().GetBool("verbose")
	}

	paths, err := discover.Paths(args)
	if err != nil {
		return domain.NewInvalidInputError("failed to resolve input paths", err)
	}
	if len(paths) == 0 {
		return domain.NewInvalidInputError(fmt.Sprintf("no syntax-tree fixtures found under %v", args), nil)
	}

	req, err := c.buildRequest(cmd, getTargetPathFromArgs(args))
	if err != nil {
		return err
	}
	req.Paths = paths

	progs := make([]*ast.Program, 0, len(paths))
	totalSections := 0
	for _, p := range paths {
		prog, err := fixture.Load(p)
		if err != nil {
			return domain.NewParseError(p, err)
		}
		if prog.ProcedureDivision != nil {
			totalSections += len(prog.ProcedureDivision.Sections)
		}
		progs = append(progs, prog)
	}

	progress := service.CreateProgressReporter(cmd.ErrOrStderr(), totalSections, c.verbose)
	driver := service.NewDriver(progress)
	resp, err := driver.Run(context.Background(), progs, req)
	if err != nil {
		categorizer := service.NewErrorCategorizer()
		if cat := categorizer.Categorize(err); cat != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s\n", cat.Message)
			for _, hint := range categorizer.GetRecoverySuggestions(cat.Category) {
				fmt.Fprintf(cmd.ErrOrStderr(), "  hint: %s\n", hint)
			}
		}
		return err
	}

	out := cmd.OutOrStdout()
	if c.outputPath != "" {
		f, err := os.Create(c.outputPath)
		if err != nil {
			return domain.NewOutputError(fmt.Sprintf("cannot create %s", c.outputPath), err)
		}
		defer f.Close()
		out = f
	}

	if err := writeResponse(out, resp, req.OutputFormat); err != nil {
		return err
	}

	if resp.Summary.SectionsFailed > 0 {
		return domain.NewAnalysisError(
			fmt.Sprintf("%d of %d section(s) failed", resp.Summary.SectionsFailed, resp.Summary.SectionsProcessed), nil)
	}
	return nil
}

// writeResponse renders resp to w in the requested format. Text output is a
// per-section pseudocode listing; json/yaml serialize the whole response.
func writeResponse(w io.Writer, resp *domain.StructureResponse, format domain.OutputFormat) error {
	switch format {
	case domain.OutputFormatJSON:
		return service.WriteJSON(w, resp)
	case domain.OutputFormatYAML:
		return service.WriteYAML(w, resp)
	default:
		fu := service.NewFormatUtils()
		for _, r := range resp.Results {
			fmt.Fprint(w, fu.FormatSectionHeader(r.Section))
			if r.Error != "" {
				fmt.Fprintf(w, "error: %s\n\n", r.Error)
				continue
			}
			fmt.Fprint(w, r.Text)
			fmt.Fprint(w, fu.FormatWarnings(r.Warnings))
			fmt.Fprintln(w)
		}
		fmt.Fprint(w, fu.FormatSummary(resp.Summary))
		return nil
	}
}

// NewRestructureCmd creates and returns the restructure cobra command
func NewRestructureCmd() *cobra.Command {
	restructureCommand := NewRestructureCommand()
	return restructureCommand.CreateCobraCommand()
}
