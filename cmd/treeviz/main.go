// Package main provides the entry point for the treeviz CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/treeviz-dev/treeviz/cmd/treeviz/commands"
	"github.com/treeviz-dev/treeviz/internal/logging"
	"github.com/treeviz-dev/treeviz/pkg/version"
)

var (
	verbose bool
	quiet   bool
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "treeviz",
		Short: "Treeviz - declarative tree extraction and text rendering",
		Long: `Treeviz adapts arbitrary document trees (JSON, YAML, XML, HTML) into
display nodes using declarative definitions, and draws them as text.

Commands:
  render    Adapt a document and draw the resulting tree
  validate  Check a definition file against the schema`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logging.Setup(verbose, quiet)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")

	rootCmd.AddCommand(commands.NewRenderCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "treeviz %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
