package lambda

// Permission represents AWS::Lambda::Permission.
// It authorizes an event source (API Gateway, S3, SNS) to invoke a function.
type Permission struct {
	FunctionName  any    `json:"FunctionName"`
	Action        string `json:"Action"`
	Principal     string `json:"Principal"`
	SourceArn     any    `json:"SourceArn,omitempty"`
	SourceAccount any    `json:"SourceAccount,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Permission) ResourceType() string { return "AWS::Lambda::Permission" }
