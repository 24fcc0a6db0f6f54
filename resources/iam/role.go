// Package iam provides CloudFormation types for AWS IAM.
package iam

// Role represents AWS::IAM::Role.
//
// Ref returns the role name. GetAtt attributes: Arn.
type Role struct {
	RoleName                 any           `json:"RoleName,omitempty"`
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	Policies                 []Role_Policy `json:"Policies,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// Role_Policy is an inline policy attached to a role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName"`
	PolicyDocument any `json:"PolicyDocument"`
}
