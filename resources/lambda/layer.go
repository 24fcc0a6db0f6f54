package lambda

// LayerVersion represents AWS::Lambda::LayerVersion.
//
// Ref returns the layer version ARN.
type LayerVersion struct {
	LayerName          any                  `json:"LayerName,omitempty"`
	Description        string               `json:"Description,omitempty"`
	CompatibleRuntimes []string             `json:"CompatibleRuntimes,omitempty"`
	Content            LayerVersion_Content `json:"Content"`
}

// ResourceType returns the CloudFormation type.
func (LayerVersion) ResourceType() string { return "AWS::Lambda::LayerVersion" }

// LayerVersion_Content points at the layer artifact.
type LayerVersion_Content struct {
	S3Bucket any    `json:"S3Bucket,omitempty"`
	S3Key    string `json:"S3Key,omitempty"`
}
