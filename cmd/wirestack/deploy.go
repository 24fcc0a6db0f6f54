package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wirestack/wirestack/internal/deploy"
	"github.com/wirestack/wirestack/internal/template"
)

func newDeployCmd() *cobra.Command {
	var opts configOpts

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy the stack to CloudFormation",
		Long: `Deploy synthesizes the stack and creates or updates the CloudFormation
stack "<environment>-serverless-app". Synthesis, verification, and the
security baseline must all pass before anything is sent.

Examples:
    wirestack deploy -e test
    wirestack deploy -e prod -c prod.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, opts)
		},
	}

	addConfigFlags(cmd, &opts)
	return cmd
}

func runDeploy(cmd *cobra.Command, opts configOpts) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	s, tmpl, err := synthesize(cfg)
	if err != nil {
		return err
	}

	body, err := template.ToJSON(tmpl)
	if err != nil {
		return err
	}

	client, err := deploy.NewClient(cmd.Context(), newLogger(cfg))
	if err != nil {
		return err
	}
	tags := map[string]string{
		"project":     "serverless-app",
		"environment": cfg.Environment,
		"managed-by":  "wirestack",
	}
	return client.Deploy(cmd.Context(), s.StackName(), body, tags)
}

func newDestroyCmd() *cobra.Command {
	var opts configOpts

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the deployed stack",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			s, err := composeStack(cfg)
			if err != nil {
				return err
			}
			client, err := deploy.NewClient(cmd.Context(), newLogger(cfg))
			if err != nil {
				return err
			}
			return client.Destroy(cmd.Context(), s.StackName())
		},
	}

	addConfigFlags(cmd, &opts)
	return cmd
}

func newOutputsCmd() *cobra.Command {
	var (
		opts       configOpts
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "Show the deployed stack's outputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			s, err := composeStack(cfg)
			if err != nil {
				return err
			}
			client, err := deploy.NewClient(cmd.Context(), newLogger(cfg))
			if err != nil {
				return err
			}
			outputs, err := client.Outputs(cmd.Context(), s.StackName())
			if err != nil {
				return err
			}

			if jsonOutput {
				data, err := json.MarshalIndent(outputs, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			for _, o := range outputs {
				fmt.Printf("%s\t%s\n", o.Key, o.Value)
			}
			return nil
		},
	}

	addConfigFlags(cmd, &opts)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit outputs as JSON")
	return cmd
}
