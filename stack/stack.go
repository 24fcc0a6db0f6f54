package stack

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/baseline"
	"github.com/wirestack/wirestack/internal/template"
	"github.com/wirestack/wirestack/intrinsics"
)

var environmentPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,19}$`)

// Props parameterizes one stack composition.
type Props struct {
	// Environment namespaces every resource identity ("dev", "test", ...).
	Environment string
	// LogLevel is wired into every function as LOG_LEVEL.
	LogLevel string
	// StackName overrides the deployed stack name.
	StackName string
	// ArtifactBucket holds the function and layer deployment artifacts.
	ArtifactBucket string
	// ExtraTags are applied alongside the standard tags.
	ExtraTags map[string]string
}

// Stack is the composed serverless application.
type Stack struct {
	props   Props
	builder *template.Builder

	// Tables are the application's DynamoDB tables.
	Tables Tables
	// Layer is the shared code layer attached to the business functions.
	Layer LayerHandle
	// UserManagement serves the /users API.
	UserManagement *UserManagementAPI
	// DataProcessor serves /process and reacts to bucket uploads.
	DataProcessor *DataProcessorAPI
	// Notifications serves /notify and fans out through the topic.
	Notifications *NotificationService
	// HealthCheck serves /health.
	HealthCheck *HealthCheckAPI

	functions     []*Function
	groups        []*EndpointGroup
	grants        []Grant
	subscriptions []Subscription
	exceptions    []baseline.Exception
	errs          []error
}

// New composes the full application for the given environment. Component
// wiring problems (bad routes, empty bindings) are collected and returned
// as one error; nothing is emitted on failure.
func New(props Props) (*Stack, error) {
	if !environmentPattern.MatchString(props.Environment) {
		return nil, fmt.Errorf("invalid environment %q: must match %s", props.Environment, environmentPattern)
	}
	if props.LogLevel == "" {
		props.LogLevel = "info"
	}
	if props.StackName == "" {
		props.StackName = props.Environment + "-serverless-app"
	}
	if props.ArtifactBucket == "" {
		props.ArtifactBucket = props.Environment + "-serverless-artifacts"
	}

	s := &Stack{
		props:   props,
		builder: template.NewBuilder(fmt.Sprintf("Serverless application stack (%s)", props.Environment)),
	}

	s.Tables = s.addTables()
	s.Layer = s.addCommonLayer()
	s.UserManagement = s.addUserManagement()
	s.DataProcessor = s.addDataProcessor()
	s.Notifications = s.addNotificationService()
	s.HealthCheck = s.addHealthCheck()
	s.addOutputs()
	s.exceptions = s.defaultExceptions()

	if len(s.errs) > 0 {
		return nil, errors.Join(s.errs...)
	}
	return s, nil
}

// Environment returns the environment the stack was composed for.
func (s *Stack) Environment() string { return s.props.Environment }

// StackName returns the CloudFormation stack name for deployment.
func (s *Stack) StackName() string { return s.props.StackName }

// Grants returns every declared (function, resource, capability) relation.
func (s *Stack) Grants() []Grant {
	return append([]Grant(nil), s.grants...)
}

// Exceptions returns the stack's pre-declared ruleset exceptions.
func (s *Stack) Exceptions() []baseline.Exception {
	return append([]baseline.Exception(nil), s.exceptions...)
}

// Synthesize produces the CloudFormation template. The same Props always
// yield byte-identical JSON output.
func (s *Stack) Synthesize() (*wirestack.Template, error) {
	tmpl, err := s.builder.Build()
	if err != nil {
		return nil, err
	}
	s.applyTags(tmpl)
	return tmpl, nil
}

func (s *Stack) fail(format string, args ...any) {
	s.errs = append(s.errs, fmt.Errorf(format, args...))
}

func (s *Stack) addOutputs() {
	for _, group := range s.groups {
		s.builder.AddOutput(group.Name+"Endpoint", wirestack.Output{
			Description: fmt.Sprintf("Base URL of the %s stage", group.Name),
			Value:       group.BaseURL(),
		})
	}
	s.builder.AddOutput("DataBucketName", wirestack.Output{
		Description: "Bucket receiving data uploads",
		Value:       s.DataProcessor.Bucket.Handle,
	})
	s.builder.AddOutput("NotificationTopicArn", wirestack.Output{
		Description: "Topic carrying notification events",
		Value:       s.Notifications.Topic.Handle,
	})
}

// defaultExceptions lists the findings this stack accepts, with the reasons.
func (s *Stack) defaultExceptions() []baseline.Exception {
	return []baseline.Exception{
		{
			RuleID:        "WS001",
			Scope:         baseline.ScopeStack,
			Justification: "Function roles attach AWSLambdaBasicExecutionRole for CloudWatch log delivery.",
		},
		{
			RuleID:        "WS002",
			Scope:         baseline.ScopeStack,
			Justification: "Object-level S3 grants use action wildcards scoped to the data bucket and its objects.",
		},
	}
}

// taggableTypes lists the resource types that accept a Tags property.
var taggableTypes = map[string]bool{
	"AWS::ApiGateway::RestApi": true,
	"AWS::ApiGateway::Stage":   true,
	"AWS::DynamoDB::Table":     true,
	"AWS::IAM::Role":           true,
	"AWS::Lambda::Function":    true,
	"AWS::Logs::LogGroup":      true,
	"AWS::S3::Bucket":          true,
	"AWS::SNS::Topic":          true,
}

// applyTags stamps the uniform tag set onto every taggable resource as a
// final pass over the serialized template, so no component can forget them.
func (s *Stack) applyTags(tmpl *wirestack.Template) {
	tags := map[string]string{
		"project":     "serverless-app",
		"environment": s.props.Environment,
		"managed-by":  "wirestack",
	}
	for k, v := range s.props.ExtraTags {
		tags[k] = v
	}

	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	serialized := make([]any, 0, len(keys))
	for _, k := range keys {
		serialized = append(serialized, map[string]any{"Key": k, "Value": tags[k]})
	}

	for id, res := range tmpl.Resources {
		if !taggableTypes[res.Type] {
			continue
		}
		if res.Properties == nil {
			res.Properties = make(map[string]any)
		}
		res.Properties["Tags"] = serialized
		tmpl.Resources[id] = res
	}
}

// resourceName builds the physical name "<environment>-<suffix>".
func (s *Stack) resourceName(suffix string) string {
	return s.props.Environment + "-" + suffix
}

// kebab converts a CamelCase component name to its kebab-case physical form
// ("UserManagement" → "user-management").
func kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// arnJoin assembles an ARN from parts with no delimiter.
func arnJoin(parts ...any) intrinsics.Join {
	return intrinsics.Join{Values: parts}
}
