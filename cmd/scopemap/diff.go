package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/annotate"
)

// diffArgCount is the number of arguments expected by the diff command.
const diffArgCount = 3

// ErrAnnotationsDiffer is returned with --exit-code when the annotations differ.
var ErrAnnotationsDiffer = errors.New("annotations differ")

func diffCmd(state *app) *cobra.Command {
	var withContext, exitCode bool

	cmd := &cobra.Command{
		Use:   "diff OLD_GRAMMAR NEW_GRAMMAR FILE",
		Short: "Compare the annotations two grammars produce for a file",
		Long: `Annotate a file with two grammars and show which node scopes changed.

Examples:
  scopemap diff source.go grammars/go.yaml main.go
  scopemap diff --exit-code old.yaml new.yaml main.go`,
		Args: cobra.ExactArgs(diffArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			before, err := annotateFile(cmd, state, args[0], args[2])
			if err != nil {
				return err
			}

			after, err := annotateFile(cmd, state, args[1], args[2])
			if err != nil {
				return err
			}

			diffs := annotate.Diff(before.Dump(), after.Dump())
			renderDiff(cmd.OutOrStdout(), diffs, withContext)

			if exitCode && annotate.Changed(diffs) {
				return ErrAnnotationsDiffer
			}

			return nil
		},
	}

	cmd.Flags().BoolVarP(&withContext, "context", "c", false, "also print unchanged lines")
	cmd.Flags().BoolVar(&exitCode, "exit-code", false, "fail when the annotations differ")

	return cmd
}

func renderDiff(out io.Writer, diffs []annotate.LineDiff, withContext bool) {
	if !annotate.Changed(diffs) {
		color.New(color.FgGreen).Fprintln(out, "no changes")

		return
	}

	added, removed := color.New(color.FgGreen), color.New(color.FgRed)

	for line := range strings.Lines(annotate.FormatDiff(diffs, withContext)) {
		switch {
		case strings.HasPrefix(line, "+"):
			added.Fprint(out, line)
		case strings.HasPrefix(line, "-"):
			removed.Fprint(out, line)
		default:
			fmt.Fprint(out, line)
		}
	}

	inserted, deleted := 0, 0

	for _, diff := range diffs {
		switch diff.Op {
		case diffmatchpatch.DiffInsert:
			inserted++
		case diffmatchpatch.DiffDelete:
			deleted++
		case diffmatchpatch.DiffEqual:
		}
	}

	fmt.Fprintf(out, "%d added, %d removed\n", inserted, deleted)
}
