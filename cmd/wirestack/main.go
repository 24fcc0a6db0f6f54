// Command wirestack synthesizes, checks, and deploys the serverless
// application stack.
//
// Usage:
//
//	wirestack synth -e test           Synthesize the CloudFormation template
//	wirestack check -e test           Run the security baseline
//	wirestack diff -e test old.json   Compare against a saved template
//	wirestack deploy -e test          Deploy the stack
//	wirestack version                 Show version
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wirestack",
		Short: "Synthesize and deploy the serverless application stack",
		Long: `wirestack composes the serverless application (tables, functions, APIs,
bucket, topic) for an environment and emits a deterministic CloudFormation
template. Synthesis fails before any output is written when references do
not resolve, grants and environment wiring disagree, or an unsuppressed
security finding remains.`,
	}

	rootCmd.AddCommand(
		newSynthCmd(),
		newCheckCmd(),
		newDiffCmd(),
		newGraphCmd(),
		newDeployCmd(),
		newDestroyCmd(),
		newOutputsCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wirestack %s\n", getVersion())
		},
	}
}
