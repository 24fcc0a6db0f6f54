// Package lambda provides CloudFormation types for AWS Lambda.
package lambda

// Function represents AWS::Lambda::Function.
//
// Ref returns the function name. GetAtt attributes: Arn.
type Function struct {
	FunctionName any                   `json:"FunctionName,omitempty"`
	Description  string                `json:"Description,omitempty"`
	Runtime      string                `json:"Runtime,omitempty"`
	Handler      string                `json:"Handler,omitempty"`
	Code         Function_Code         `json:"Code"`
	Role         any                   `json:"Role"`
	MemorySize   int                   `json:"MemorySize,omitempty"`
	Timeout      int                   `json:"Timeout,omitempty"`
	Layers       []any                 `json:"Layers,omitempty"`
	Environment  *Function_Environment `json:"Environment,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Function) ResourceType() string { return "AWS::Lambda::Function" }

// Function_Code points at the deployment artifact.
type Function_Code struct {
	S3Bucket any    `json:"S3Bucket,omitempty"`
	S3Key    string `json:"S3Key,omitempty"`
	ZipFile  string `json:"ZipFile,omitempty"`
}

// Function_Environment holds the function environment variables.
type Function_Environment struct {
	Variables map[string]any `json:"Variables,omitempty"`
}
