package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/grammar"
)

// ErrCheckFailed is returned when at least one grammar file is invalid.
var ErrCheckFailed = errors.New("grammar check failed")

func checkCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check GRAMMAR_FILE...",
		Short: "Validate and compile grammar files",
		Long: `Validate grammar files against the grammar schema, compile their scope maps and
resolve their tree-sitter languages.

Examples:
  scopemap check grammars/go.yaml
  scopemap check grammars/*.toml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(state, cmd.OutOrStdout(), args)
		},
	}
}

func runCheck(state *app, out io.Writer, paths []string) error {
	failed := 0

	for _, path := range paths {
		err := checkOne(state, out, path)
		if err != nil {
			failed++

			color.New(color.FgRed).Fprintf(out, "FAIL %s\n", path)
			fmt.Fprintf(out, "  %v\n", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d files", ErrCheckFailed, failed, len(paths))
	}

	return nil
}

func checkOne(state *app, out io.Writer, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	start := time.Now()

	g, err := grammar.LoadFile(path, state.scopemapOptions()...)
	if err != nil {
		return err
	}

	_, err = g.Language()
	if err != nil {
		return err
	}

	if state.quiet {
		return nil
	}

	stats := g.Scopes.Stats()

	color.New(color.FgGreen).Fprintf(out, "ok   %s", path)
	fmt.Fprintf(out, " %s (%s, %s selectors, %s nodes, %s, %s)\n",
		g.ScopeName,
		humanize.Bytes(uint64(info.Size())), //nolint:gosec // file sizes are non-negative
		humanize.Comma(int64(stats.Selectors)),
		humanize.Comma(int64(stats.Nodes)),
		g.Parser,
		time.Since(start).Round(time.Microsecond),
	)

	return nil
}
