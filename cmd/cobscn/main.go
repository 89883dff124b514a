package main

import (
	"os"

	"github.com/ludo-technologies/cobscn/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cobscn",
	Short: "A COBOL control-flow structuring engine",
	Long: `cobscn turns a parsed COBOL PROCEDURE DIVISION's paragraph-and-GO-TO
control flow into a structured statement tree of if/while/break/continue,
favouring the cheapest-to-read shape at every branch point and falling back
to a residual goto only when no structured shape reaches the same targets.

Features:
  • Reachability filtering of dead paragraphs and statements
  • Loop detection via strongly connected components
  • Cost-directed if/while/break shaping
  • Per-section parallel processing
  • Graphviz DOT dumps of any intermediate pipeline stage`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewRestructureCmd())
	rootCmd.AddCommand(NewCheckCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
