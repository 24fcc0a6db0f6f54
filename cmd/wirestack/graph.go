package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wirestack/wirestack/internal/graph"
)

func newGraphCmd() *cobra.Command {
	var (
		opts       configOpts
		format     string
		outputFile string
		cluster    bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the resource dependency graph",
		Long: `Graph synthesizes the stack and renders its dependency graph.

Examples:
    wirestack graph -e test
    wirestack graph -e test --format mermaid
    wirestack graph -e test --cluster -o graph.dot`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(opts, format, outputFile, cluster)
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().StringVarP(&format, "format", "f", "dot", "Graph format: dot or mermaid")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&cluster, "cluster", false, "Group nodes by AWS service")

	return cmd
}

func runGraph(opts configOpts, format, outputFile string, cluster bool) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	_, tmpl, err := synthesize(cfg)
	if err != nil {
		return err
	}

	g := &graph.Generator{ClusterByService: cluster}
	switch format {
	case "dot":
		g.Format = graph.FormatDOT
	case "mermaid":
		g.Format = graph.FormatMermaid
	default:
		return fmt.Errorf("unknown format %q: use dot or mermaid", format)
	}

	output, err := g.GenerateString(tmpl)
	if err != nil {
		return err
	}
	return writeOutput([]byte(output), outputFile)
}
