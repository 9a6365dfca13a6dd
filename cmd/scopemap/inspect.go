package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/grammar"
)

func inspectCmd(state *app) *cobra.Command {
	var statsOnly bool

	cmd := &cobra.Command{
		Use:   "inspect GRAMMAR",
		Short: "Show the compiled scope table of a grammar",
		Long: `Show every selector chain of a compiled grammar together with the rules it yields
after default propagation, least specific first.

Examples:
  scopemap inspect source.go
  scopemap inspect grammars/go.yaml --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := state.grammar(args[0])
			if err != nil {
				return err
			}

			renderInspect(cmd.OutOrStdout(), g, statsOnly)

			return nil
		},
	}

	cmd.Flags().BoolVar(&statsOnly, "stats", false, "print only the build summary")

	return cmd
}

func renderInspect(out io.Writer, g *grammar.Grammar, statsOnly bool) {
	color.New(color.Bold).Fprintf(out, "%s (%s)\n", g.Name, g.ScopeName)
	fmt.Fprintf(out, "parser: %s\nsource: %s\n", g.Parser, g.Source)

	if len(g.FileTypes) > 0 {
		fmt.Fprintf(out, "file types: %s\n", strings.Join(g.FileTypes, ", "))
	}

	stats := g.Scopes.Stats()

	summary := newTable()
	summary.AppendRows([]table.Row{
		{"declarations", humanize.Comma(int64(stats.Declarations))},
		{"selectors", humanize.Comma(int64(stats.Selectors))},
		{"nodes", humanize.Comma(int64(stats.Nodes))},
		{"named roots", humanize.Comma(int64(stats.NamedRoots))},
		{"literal roots", humanize.Comma(int64(stats.LiteralRoots))},
		{"max depth", stats.MaxDepth},
		{"wildcard", stats.HasWildcard},
	})

	fmt.Fprintln(out, summary.Render())

	if statsOnly {
		return
	}

	entries := newTable()
	entries.AppendHeader(table.Row{"selector", "rules"})

	for _, entry := range g.Scopes.Entries() {
		rules := make([]string, len(entry.Declarations))
		for idx, id := range entry.Declarations {
			rules[idx] = g.Scopes.Payload(id).String()
		}

		entries.AppendRow(table.Row{entry.Selector, strings.Join(rules, "\n")})
	}

	entries.AppendFooter(table.Row{fmt.Sprintf("Total: %d entries", entries.Length())})

	fmt.Fprintln(out, entries.Render())
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateHeader = false

	return tbl
}
