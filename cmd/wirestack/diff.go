package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/differ"
)

func newDiffCmd() *cobra.Command {
	var (
		opts       configOpts
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "diff <saved-template>",
		Short: "Compare the synthesized template against a saved one",
		Long: `Diff synthesizes the stack and compares it to a previously saved template
(JSON or YAML), reporting added, removed, and modified resources.

Examples:
    wirestack diff -e test template.json
    wirestack diff -e prod deployed.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], jsonOutput)
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the diff as JSON")

	return cmd
}

func runDiff(opts configOpts, savedPath string, jsonOutput bool) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	_, tmpl, err := synthesize(cfg)
	if err != nil {
		return err
	}

	saved, err := differ.LoadTemplate(savedPath)
	if err != nil {
		return err
	}

	result := differ.Compare(saved, tmpl)

	if jsonOutput {
		data, err := json.MarshalIndent(result.Diff, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if result.Empty() {
		fmt.Println("No changes")
		return nil
	}
	printDiffEntries("+", result.Diff.Added)
	printDiffEntries("-", result.Diff.Removed)
	printDiffEntries("~", result.Diff.Modified)
	fmt.Printf("%d added, %d removed, %d modified\n",
		result.Summary.Added, result.Summary.Removed, result.Summary.Modified)
	return nil
}

func printDiffEntries(marker string, entries []wirestack.DiffEntry) {
	for _, e := range entries {
		fmt.Printf("%s %s (%s)\n", marker, e.Resource, e.Type)
		for _, change := range e.Changes {
			fmt.Printf("    %s\n", change)
		}
	}
}
