package main

import (
	"fmt"

	"github.com/spf13/cobra"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/template"
)

func newSynthCmd() *cobra.Command {
	var (
		opts         configOpts
		outputFormat string
		outputFile   string
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize the CloudFormation template",
		Long: `Synth composes the stack for an environment and emits its template.

Verification and the security baseline run first; nothing is written when
either fails.

Examples:
    wirestack synth -e test
    wirestack synth -e prod -o template.json
    wirestack synth -e dev --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(opts, outputFormat, outputFile)
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runSynth(opts configOpts, format, outputFile string) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	_, tmpl, err := synthesize(cfg)
	if err != nil {
		return err
	}

	data, err := renderTemplate(tmpl, format)
	if err != nil {
		return err
	}
	return writeOutput(data, outputFile)
}

func renderTemplate(tmpl *wirestack.Template, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := template.ToJSON(tmpl)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return template.ToYAML(tmpl)
	default:
		return nil, fmt.Errorf("unknown format %q: use json or yaml", format)
	}
}
