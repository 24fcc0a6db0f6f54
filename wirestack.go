// Package wirestack provides the template contract for declarative serverless
// stack composition.
//
// Infrastructure components register typed resources with a builder and
// receive handles back:
//
//	users := b.Add("UsersTable", dynamodb.Table{TableName: "dev-users", ...})
//	fn := lambda.Function{
//	    Role: role.Attr("Arn"),                       // Fn::GetAtt
//	    Environment: ...{"USER_TABLE_NAME": users},   // Ref
//	}
//
// A synthesis pass turns the registered resources into a CloudFormation
// template. All cross-resource references travel through handles, never
// through reconstructed identifier strings.
package wirestack

import (
	"encoding/json"
)

// Resource is implemented by every typed resource (dynamodb.Table,
// lambda.Function, etc.).
type Resource interface {
	// ResourceType returns the CloudFormation type (e.g., "AWS::S3::Bucket").
	ResourceType() string
}

// Handle is the public reference to a registered resource. It serializes to
// a CloudFormation Ref, so a handle can be used directly as a property value
// or environment variable value.
type Handle struct {
	// LogicalID is the logical name of the resource in the template.
	LogicalID string
}

// MarshalJSON serializes the handle as {"Ref": "<LogicalID>"}.
func (h Handle) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": h.LogicalID})
}

// IsZero reports whether the handle has been populated.
func (h Handle) IsZero() bool {
	return h.LogicalID == ""
}

// Attr returns a GetAtt reference to an attribute of the resource.
func (h Handle) Attr(attribute string) AttrRef {
	return AttrRef{Resource: h.LogicalID, Attribute: attribute}
}

// AttrRef is a GetAtt reference to a resource attribute.
//
// When serialized, AttrRef becomes:
//
//	{"Fn::GetAtt": ["UsersTable", "Arn"]}
type AttrRef struct {
	// Resource is the logical name of the referenced resource.
	Resource string
	// Attribute is the attribute name (e.g., "Arn").
	Attribute string
}

// MarshalJSON serializes AttrRef to CloudFormation GetAtt syntax.
func (a AttrRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{
		"Fn::GetAtt": {a.Resource, a.Attribute},
	})
}

// IsZero reports whether the AttrRef has been populated.
func (a AttrRef) IsZero() bool {
	return a.Resource == "" && a.Attribute == ""
}

// Template represents a CloudFormation template.
type Template struct {
	AWSTemplateFormatVersion string                 `json:"AWSTemplateFormatVersion" yaml:"AWSTemplateFormatVersion"`
	Description              string                 `json:"Description,omitempty" yaml:"Description,omitempty"`
	Parameters               map[string]Parameter   `json:"Parameters,omitempty" yaml:"Parameters,omitempty"`
	Resources                map[string]ResourceDef `json:"Resources" yaml:"Resources"`
	Outputs                  map[string]Output      `json:"Outputs,omitempty" yaml:"Outputs,omitempty"`
}

// ResourceDef is a single resource in the template.
type ResourceDef struct {
	Type           string         `json:"Type" yaml:"Type"`
	Properties     map[string]any `json:"Properties,omitempty" yaml:"Properties,omitempty"`
	DependsOn      []string       `json:"DependsOn,omitempty" yaml:"DependsOn,omitempty"`
	DeletionPolicy string         `json:"DeletionPolicy,omitempty" yaml:"DeletionPolicy,omitempty"`
}

// Parameter is a template parameter.
type Parameter struct {
	Type          string   `json:"Type" yaml:"Type"`
	Description   string   `json:"Description,omitempty" yaml:"Description,omitempty"`
	Default       any      `json:"Default,omitempty" yaml:"Default,omitempty"`
	AllowedValues []string `json:"AllowedValues,omitempty" yaml:"AllowedValues,omitempty"`
}

// Output is a template output.
type Output struct {
	Description string `json:"Description,omitempty" yaml:"Description,omitempty"`
	Value       any    `json:"Value" yaml:"Value"`
	Export      *struct {
		Name string `json:"Name" yaml:"Name"`
	} `json:"Export,omitempty" yaml:"Export,omitempty"`
}

// SynthResult is the JSON output from `wirestack synth`.
type SynthResult struct {
	Success   bool     `json:"success"`
	Template  Template `json:"template,omitempty"`
	Resources []string `json:"resources,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// CheckResult is the JSON output from `wirestack check`.
type CheckResult struct {
	Success    bool     `json:"success"`
	Resources  int      `json:"resources"`
	Findings   []string `json:"findings,omitempty"`
	Suppressed []string `json:"suppressed,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

// TemplateDiff describes the difference between two templates.
type TemplateDiff struct {
	Added    []DiffEntry `json:"added,omitempty"`
	Removed  []DiffEntry `json:"removed,omitempty"`
	Modified []DiffEntry `json:"modified,omitempty"`
}

// DiffEntry is a single changed resource in a diff.
type DiffEntry struct {
	Resource string   `json:"resource"`
	Type     string   `json:"type"`
	Changes  []string `json:"changes,omitempty"`
}

// DiffSummary counts the entries in a TemplateDiff.
type DiffSummary struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
	Total    int `json:"total"`
}
