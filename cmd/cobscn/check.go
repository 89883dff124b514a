package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ludo-technologies/cobscn/domain"
	"github.com/ludo-technologies/cobscn/internal/ast"
	"github.com/ludo-technologies/cobscn/internal/config"
	"github.com/ludo-technologies/cobscn/internal/discover"
	"github.com/ludo-technologies/cobscn/internal/fixture"
	"github.com/ludo-technologies/cobscn/service"
	"github.com/spf13/cobra"
)

// CheckCommand is the CI-facing gate: run the whole pipeline quietly and
// fail the build on structuring errors or excess warnings.
type CheckCommand struct {
	configFile  string
	quiet       bool
	maxWarnings int
}

// NewCheckCommand creates a new check command
func NewCheckCommand() *CheckCommand {
	return &CheckCommand{
		configFile:  "",
		quiet:       false,
		maxWarnings: domain.DefaultCheckMaxWarnings,
	}
}

// CreateCobraCommand creates the cobra command for CI checking
func (c *CheckCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Quick structuring check for CI/CD pipelines",
		Long: `Run the full structuring pipeline over a tree of syntax-tree fixtures
and report only whether it succeeded.

Exit codes:
• 0: Every section structured cleanly
• 1: Structuring issues found (failed sections, or warnings over the limit)
• 2: Analysis failed outright (unreadable input, bad configuration)

Examples:
  # Typical CI usage
  cobscn check .

  # Tolerate up to 10 non-fatal warnings
  cobscn check --max-warnings 10 fixtures/`,
		Args: cobra.ArbitraryArgs,
		RunE: c.runCheck,
	}

	cmd.Flags().StringVarP(&c.configFile, "config", "c", "", "Configuration file path")
	cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "Suppress output unless issues found")
	cmd.Flags().IntVar(&c.maxWarnings, "max-warnings", domain.DefaultCheckMaxWarnings, "Maximum tolerated non-fatal warnings")

	return cmd
}

// runCheck executes the check and maps the outcome to the exit-code
// contract documented in the long help.
func (c *CheckCommand) runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	resp := c.check(domain.CheckRequest{
		Paths:       args,
		MaxWarnings: c.maxWarnings,
		Quiet:       c.quiet,
	})

	if !resp.Passed {
		for _, issue := range resp.Issues {
			fmt.Fprintf(cmd.ErrOrStderr(), "❌ %s\n", issue)
		}
		os.Exit(resp.ExitCode)
	}

	if !c.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "✅ Structuring check passed\n")
	}
	return nil
}

func (c *CheckCommand) check(checkReq domain.CheckRequest) *domain.CheckResponse {
	resp := &domain.CheckResponse{GeneratedAt: time.Now().UTC().Format(time.RFC3339)}
	fail := func(code int, format string, a ...interface{}) *domain.CheckResponse {
		resp.Passed = false
		resp.ExitCode = code
		resp.Issues = append(resp.Issues, fmt.Sprintf(format, a...))
		return resp
	}

	paths, err := discover.Paths(checkReq.Paths)
	if err != nil {
		return fail(2, "failed to resolve input paths: %v", err)
	}
	if len(paths) == 0 {
		return fail(2, "no syntax-tree fixtures found under %v", checkReq.Paths)
	}

	cfg, err := config.LoadConfigFromDir(c.configFile, getTargetPathFromArgs(checkReq.Paths))
	if err != nil {
		return fail(2, "configuration error: %v", err)
	}

	progs := make([]*ast.Program, 0, len(paths))
	for _, p := range paths {
		prog, err := fixture.Load(p)
		if err != nil {
			return fail(2, "%s: %v", p, err)
		}
		progs = append(progs, prog)
	}

	req := domain.StructureRequest{
		Paths:           paths,
		OutputFormat:    domain.OutputFormatJSON,
		KeepRawGotos:    cfg.Reduction.KeepRawGotos,
		LabelPrefix:     cfg.Reduction.LabelPrefix,
		ReductionBudget: cfg.Reduction.Budget,
		MaxConcurrency:  cfg.Driver.MaxConcurrency,
	}

	driver := service.NewDriver(service.NewNoOpProgressReporter())
	out, err := driver.Run(context.Background(), progs, req)
	if err != nil {
		return fail(2, "analysis failed: %v", err)
	}

	for _, e := range out.Errors {
		fail(1, "%s", e)
	}
	if checkReq.MaxWarnings >= 0 && out.Summary.WarningCount > checkReq.MaxWarnings {
		fail(1, "%d warning(s) exceed the limit of %d", out.Summary.WarningCount, checkReq.MaxWarnings)
	}
	if len(resp.Issues) == 0 {
		resp.Passed = true
		resp.ExitCode = 0
	}
	return resp
}

// NewCheckCmd creates and returns the check cobra command
func NewCheckCmd() *cobra.Command {
	checkCommand := NewCheckCommand()
	return checkCommand.CreateCobraCommand()
}
