// Package sns provides CloudFormation types for Amazon SNS.
package sns

// Topic represents AWS::SNS::Topic.
//
// Ref returns the topic ARN. GetAtt attributes: TopicName.
type Topic struct {
	TopicName   any    `json:"TopicName,omitempty"`
	DisplayName string `json:"DisplayName,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Topic) ResourceType() string { return "AWS::SNS::Topic" }

// Subscription represents AWS::SNS::Subscription.
type Subscription struct {
	TopicArn any    `json:"TopicArn"`
	Protocol string `json:"Protocol"`
	Endpoint any    `json:"Endpoint"`
}

// ResourceType returns the CloudFormation type.
func (Subscription) ResourceType() string { return "AWS::SNS::Subscription" }
