// Package logs provides CloudFormation types for Amazon CloudWatch Logs.
package logs

// LogGroup represents AWS::Logs::LogGroup.
//
// Ref returns the log group name. GetAtt attributes: Arn.
type LogGroup struct {
	LogGroupName    any `json:"LogGroupName,omitempty"`
	RetentionInDays int `json:"RetentionInDays,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LogGroup) ResourceType() string { return "AWS::Logs::LogGroup" }
