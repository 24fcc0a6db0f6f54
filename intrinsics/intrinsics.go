// Package intrinsics provides CloudFormation intrinsic functions.
//
// Core intrinsic functions:
//
//	Ref{"UsersTable"} → {"Ref": "UsersTable"}
//	Sub{String: "${AWS::StackName}-users"} → {"Fn::Sub": "${AWS::StackName}-users"}
//	Join{",", []any{"a", "b"}} → {"Fn::Join": [",", ["a", "b"]]}
package intrinsics

import (
	"encoding/json"
)

// Ref represents a CloudFormation Ref intrinsic function.
type Ref struct {
	Name string
}

// MarshalJSON serializes to {"Ref": name}.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Ref": r.Name})
}

// IsZero reports whether the Ref has been populated.
func (r Ref) IsZero() bool { return r.Name == "" }

// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
type GetAtt struct {
	Resource  string
	Attribute string
}

// MarshalJSON serializes to {"Fn::GetAtt": [resource, attribute]}.
func (g GetAtt) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]string{"Fn::GetAtt": {g.Resource, g.Attribute}})
}

// IsZero reports whether the GetAtt has been populated.
func (g GetAtt) IsZero() bool { return g.Resource == "" && g.Attribute == "" }

// Sub represents a CloudFormation Fn::Sub intrinsic function.
type Sub struct {
	String string
}

// MarshalJSON serializes to {"Fn::Sub": string}.
func (s Sub) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"Fn::Sub": s.String})
}

// IsZero reports whether the Sub has been populated.
func (s Sub) IsZero() bool { return s.String == "" }

// SubWithMap is Fn::Sub with a variable map.
type SubWithMap struct {
	String string
	Map    map[string]any
}

// MarshalJSON serializes to {"Fn::Sub": [string, map]}.
func (s SubWithMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{"Fn::Sub": {s.String, s.Map}})
}

// Join represents a CloudFormation Fn::Join intrinsic function.
type Join struct {
	Delimiter string
	Values    []any
}

// MarshalJSON serializes to {"Fn::Join": [delimiter, values]}.
func (j Join) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string][]any{"Fn::Join": {j.Delimiter, j.Values}})
}

// Tag represents a CloudFormation resource tag.
type Tag struct {
	Key   string `json:"Key"`
	Value any    `json:"Value"`
}

// Json is a shorthand for map[string]any.
// Used for inline JSON objects like Condition blocks.
type Json = map[string]any

// Any creates a []any slice from the given items.
// Use for fields typed as []any that accept mixed types or intrinsics.
func Any(items ...any) []any {
	return items
}
