package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/scopemap/pkg/scoperules"
)

type matchOptions struct {
	text      string
	positions []int
	anonymous bool
}

func matchCmd(state *app) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match GRAMMAR NODE_TYPE...",
		Short: "Query a grammar with a node path",
		Long: `Query the scope map of a grammar with the node types of a path, from the root to the
node. GRAMMAR is a grammar file or a registered scope name.

Examples:
  scopemap match source.go call_expression identifier --positions 0,0 --text len
  scopemap match grammars/go.yaml source_file '"package"' --anonymous`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // grammar plus at least one node type
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(state, cmd.OutOrStdout(), args[0], args[1:], opts)
		},
	}

	cmd.Flags().IntSliceVarP(&opts.positions, "positions", "p", nil, "sibling index of each node on the path")
	cmd.Flags().BoolVar(&opts.anonymous, "anonymous", false, "look up the last node as an anonymous token")
	cmd.Flags().StringVar(&opts.text, "text", "", "node text used by exact and match rules")

	return cmd
}

func runMatch(state *app, out io.Writer, ref string, nodeTypes []string, opts matchOptions) error {
	g, err := state.grammar(ref)
	if err != nil {
		return err
	}

	if opts.anonymous {
		last := len(nodeTypes) - 1
		nodeTypes[last] = strings.Trim(nodeTypes[last], `"`)
	}

	rules, ok := g.Scopes.Get(nodeTypes, opts.positions, !opts.anonymous)
	if !ok {
		color.New(color.FgYellow).Fprintln(out, "no match")

		return nil
	}

	for idx, rule := range rules {
		fmt.Fprintf(out, "%d. %s\n", idx+1, rule)
	}

	scope, ok := scoperules.Resolve(rules, opts.text)
	if !ok {
		color.New(color.FgYellow).Fprintf(out, "no rule applies to %q\n", opts.text)

		return nil
	}

	fmt.Fprint(out, "scope: ")
	color.New(color.FgCyan).Fprintln(out, scope)

	return nil
}
