// Package main provides the scopemap CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	state := &app{}

	rootCmd := &cobra.Command{
		Use:   "scopemap",
		Short: "Selector-to-scope matching for tree-sitter grammars",
		Long: `scopemap compiles grammar scope maps and applies them to syntax trees.

Commands:
  check     Validate and compile grammar files
  match     Query a grammar with a node path
  inspect   Show the compiled scope table of a grammar
  annotate  Print the scope of every node in a file
  diff      Compare the annotations two grammars produce for a file`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if state.noColor {
				color.NoColor = true //nolint:reassign // intentional override of library global
			}

			return state.setup(cmd.Context())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&state.cfgFile, "config", "", "config file (default is .scopemap.yaml in ., $HOME or /etc/scopemap)")
	flags.BoolVarP(&state.verbose, "verbose", "v", false, "verbose output")
	flags.BoolVarP(&state.quiet, "quiet", "q", false, "suppress output")
	flags.BoolVar(&state.noColor, "no-color", false, "disable colored output")
	flags.StringVar(&state.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(checkCmd(state))
	rootCmd.AddCommand(matchCmd(state))
	rootCmd.AddCommand(inspectCmd(state))
	rootCmd.AddCommand(annotateCmd(state))
	rootCmd.AddCommand(diffCmd(state))
	rootCmd.AddCommand(versionCmd())

	// Post-run hooks are skipped when a command fails; metrics must still be flushed.
	for _, sub := range rootCmd.Commands() {
		if sub.RunE != nil {
			sub.RunE = withTeardown(state, sub.RunE)
		}
	}

	return rootCmd
}

func withTeardown(state *app, runE func(*cobra.Command, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		defer func() {
			err = errors.Join(err, state.teardown(cmd.Context()))
		}()

		return runE(cmd, args)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String())

			return err
		},
	}
}
