package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/baseline"
)

func newCheckCmd() *cobra.Command {
	var (
		opts       configOpts
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the security baseline over the synthesized template",
		Long: `Check synthesizes the stack and evaluates the security ruleset.

Suppressed findings are listed with their justifications. Any unsuppressed
error-severity finding makes the command fail.

Examples:
    wirestack check -e test
    wirestack check -e prod --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, jsonOutput)
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the result as JSON")

	return cmd
}

func runCheck(opts configOpts, jsonOutput bool) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	s, err := composeStack(cfg)
	if err != nil {
		return err
	}
	tmpl, err := s.Synthesize()
	if err != nil {
		return err
	}
	if err := s.Verify(tmpl); err != nil {
		return fmt.Errorf("verification failed:\n%w", err)
	}

	report, err := baseline.Evaluate(tmpl, s.Exceptions())
	if err != nil {
		return err
	}

	result := wirestack.CheckResult{
		Success:   !report.Failed(),
		Resources: len(tmpl.Resources),
	}
	for _, f := range report.Findings {
		result.Findings = append(result.Findings, f.String())
	}
	for _, sf := range report.Suppressed {
		result.Suppressed = append(result.Suppressed, fmt.Sprintf("%s (%s)", sf.Finding, sf.Justification))
	}

	if jsonOutput {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printCheckResult(result)
	}

	if report.Failed() {
		return errors.New("security baseline failed")
	}
	return nil
}

func printCheckResult(result wirestack.CheckResult) {
	fmt.Printf("Checked %d resources\n", result.Resources)
	for _, f := range result.Findings {
		fmt.Fprintf(os.Stderr, "finding: %s\n", f)
	}
	for _, s := range result.Suppressed {
		fmt.Printf("suppressed: %s\n", s)
	}
	if result.Success {
		fmt.Println("OK")
	}
}
