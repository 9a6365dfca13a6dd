package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/annotate"
	"github.com/Sumatoshi-tech/scopemap/pkg/textutil"
)

const (
	formatDump  = "dump"
	formatTable = "table"
)

// Sentinel errors for the annotate command.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrBinaryFile        = errors.New("binary file")
)

func annotateCmd(state *app) *cobra.Command {
	var grammarRef, format string

	cmd := &cobra.Command{
		Use:   "annotate FILE",
		Short: "Print the scope of every node in a file",
		Long: `Parse a source file and print every node that receives a scope. The grammar is
detected from the file name and content unless --grammar is given.

Examples:
  scopemap annotate main.go
  scopemap annotate -g grammars/go.yaml -f table main.go`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, state, args[0], grammarRef, format)
		},
	}

	cmd.Flags().StringVarP(&grammarRef, "grammar", "g", "", "grammar file or scope name")
	cmd.Flags().StringVarP(&format, "format", "f", formatDump, "output format (dump, table)")

	return cmd
}

func runAnnotate(cmd *cobra.Command, state *app, path, grammarRef, format string) error {
	if format != formatDump && format != formatTable {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	result, err := annotateFile(cmd, state, grammarRef, path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if format == formatDump {
		fmt.Fprint(out, result.Dump())

		return nil
	}

	renderAnnotation(out, result)

	return nil
}

func annotateFile(cmd *cobra.Command, state *app, grammarRef, path string) (*annotate.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	if textutil.IsBinary(content) {
		return nil, fmt.Errorf("%w: %s", ErrBinaryFile, path)
	}

	g, err := state.grammarFor(grammarRef, path, content)
	if err != nil {
		return nil, err
	}

	annotator, err := state.annotator(g)
	if err != nil {
		return nil, err
	}

	return annotator.Annotate(cmd.Context(), content)
}

func renderAnnotation(out io.Writer, result *annotate.Result) {
	tbl := newTable()
	tbl.AppendHeader(table.Row{"start", "end", "node", "scope", "text"})

	for _, span := range result.Spans {
		nodeType := span.Type
		if !span.Named {
			nodeType = strconv.Quote(nodeType)
		}

		tbl.AppendRow(table.Row{
			fmt.Sprintf("%d:%d", span.StartRow+1, span.StartCol+1),
			fmt.Sprintf("%d:%d", span.EndRow+1, span.EndCol+1),
			nodeType,
			span.Scope,
			span.Text,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%d of %d nodes scoped, %d lines", len(result.Spans), result.Nodes, result.Lines)})

	fmt.Fprintln(out, tbl.Render())
}
