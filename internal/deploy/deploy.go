// Package deploy drives CloudFormation stack operations for synthesized
// templates.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// API is the CloudFormation surface the client uses. It is satisfied by
// *cloudformation.Client and by test fakes.
type API interface {
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// Client deploys and tears down stacks.
type Client struct {
	api     API
	logger  *slog.Logger
	timeout time.Duration
}

// NewClient builds a client from the ambient AWS configuration (environment,
// shared config, instance role).
func NewClient(ctx context.Context, logger *slog.Logger) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}
	return New(cloudformation.NewFromConfig(cfg), logger), nil
}

// New wraps an existing CloudFormation API.
func New(api API, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, logger: logger, timeout: 30 * time.Minute}
}

// Deploy creates the stack, or updates it when it already exists. An update
// that changes nothing is reported and treated as success.
func (c *Client) Deploy(ctx context.Context, stackName string, templateBody []byte, tags map[string]string) error {
	exists, err := c.stackExists(ctx, stackName)
	if err != nil {
		return err
	}

	capabilities := []types.Capability{types.CapabilityCapabilityNamedIam}
	if !exists {
		c.logger.Info("creating stack", "stack", stackName)
		_, err := c.api.CreateStack(ctx, &cloudformation.CreateStackInput{
			StackName:    aws.String(stackName),
			TemplateBody: aws.String(string(templateBody)),
			Capabilities: capabilities,
			Tags:         cfnTags(tags),
		})
		if err != nil {
			return fmt.Errorf("creating stack %s: %w", stackName, err)
		}

		waiter := cloudformation.NewStackCreateCompleteWaiter(c.api)
		if err := waiter.Wait(ctx, describeInput(stackName), c.timeout); err != nil {
			return fmt.Errorf("waiting for stack %s to create: %w", stackName, err)
		}
		c.logger.Info("stack created", "stack", stackName)
		return nil
	}

	c.logger.Info("updating stack", "stack", stackName)
	_, err = c.api.UpdateStack(ctx, &cloudformation.UpdateStackInput{
		StackName:    aws.String(stackName),
		TemplateBody: aws.String(string(templateBody)),
		Capabilities: capabilities,
		Tags:         cfnTags(tags),
	})
	if err != nil {
		if strings.Contains(err.Error(), "No updates are to be performed") {
			c.logger.Info("stack is up to date", "stack", stackName)
			return nil
		}
		return fmt.Errorf("updating stack %s: %w", stackName, err)
	}

	waiter := cloudformation.NewStackUpdateCompleteWaiter(c.api)
	if err := waiter.Wait(ctx, describeInput(stackName), c.timeout); err != nil {
		return fmt.Errorf("waiting for stack %s to update: %w", stackName, err)
	}
	c.logger.Info("stack updated", "stack", stackName)
	return nil
}

// Destroy deletes the stack and waits for the deletion to finish. Deleting
// a stack that does not exist is not an error.
func (c *Client) Destroy(ctx context.Context, stackName string) error {
	exists, err := c.stackExists(ctx, stackName)
	if err != nil {
		return err
	}
	if !exists {
		c.logger.Info("stack does not exist", "stack", stackName)
		return nil
	}

	c.logger.Info("deleting stack", "stack", stackName)
	if _, err := c.api.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	}); err != nil {
		return fmt.Errorf("deleting stack %s: %w", stackName, err)
	}

	waiter := cloudformation.NewStackDeleteCompleteWaiter(c.api)
	if err := waiter.Wait(ctx, describeInput(stackName), c.timeout); err != nil {
		return fmt.Errorf("waiting for stack %s to delete: %w", stackName, err)
	}
	c.logger.Info("stack deleted", "stack", stackName)
	return nil
}

// Outputs returns the stack's outputs as a sorted key/value listing.
func (c *Client) Outputs(ctx context.Context, stackName string) ([]Output, error) {
	out, err := c.api.DescribeStacks(ctx, describeInput(stackName))
	if err != nil {
		return nil, fmt.Errorf("describing stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	outputs := make([]Output, 0, len(out.Stacks[0].Outputs))
	for _, o := range out.Stacks[0].Outputs {
		outputs = append(outputs, Output{
			Key:         aws.ToString(o.OutputKey),
			Value:       aws.ToString(o.OutputValue),
			Description: aws.ToString(o.Description),
		})
	}
	sort.Slice(outputs, func(i, j int) bool { return outputs[i].Key < outputs[j].Key })
	return outputs, nil
}

// Output is one deployed stack output.
type Output struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

func (c *Client) stackExists(ctx context.Context, stackName string) (bool, error) {
	_, err := c.api.DescribeStacks(ctx, describeInput(stackName))
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") {
			return false, nil
		}
		return false, fmt.Errorf("describing stack %s: %w", stackName, err)
	}
	return true, nil
}

func describeInput(stackName string) *cloudformation.DescribeStacksInput {
	return &cloudformation.DescribeStacksInput{StackName: aws.String(stackName)}
}

func cfnTags(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		result = append(result, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return result
}
