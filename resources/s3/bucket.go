// Package s3 provides CloudFormation types for Amazon S3.
package s3

// Bucket represents AWS::S3::Bucket.
//
// Ref returns the bucket name. GetAtt attributes: Arn, DomainName.
type Bucket struct {
	BucketName                     any                             `json:"BucketName,omitempty"`
	VersioningConfiguration        *VersioningConfiguration        `json:"VersioningConfiguration,omitempty"`
	BucketEncryption               *BucketEncryption               `json:"BucketEncryption,omitempty"`
	PublicAccessBlockConfiguration *PublicAccessBlockConfiguration `json:"PublicAccessBlockConfiguration,omitempty"`
	NotificationConfiguration      *NotificationConfiguration      `json:"NotificationConfiguration,omitempty"`
	LifecycleConfiguration         *LifecycleConfiguration         `json:"LifecycleConfiguration,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Bucket) ResourceType() string { return "AWS::S3::Bucket" }

// BucketPolicy represents AWS::S3::BucketPolicy.
type BucketPolicy struct {
	Bucket         any `json:"Bucket"`
	PolicyDocument any `json:"PolicyDocument"`
}

// ResourceType returns the CloudFormation type.
func (BucketPolicy) ResourceType() string { return "AWS::S3::BucketPolicy" }

// VersioningConfiguration enables object versioning.
type VersioningConfiguration struct {
	Status string `json:"Status"`
}

// BucketEncryption configures default server-side encryption.
type BucketEncryption struct {
	ServerSideEncryptionConfiguration []ServerSideEncryptionRule `json:"ServerSideEncryptionConfiguration"`
}

// ServerSideEncryptionRule is a single default-encryption rule.
type ServerSideEncryptionRule struct {
	ServerSideEncryptionByDefault *ServerSideEncryptionByDefault `json:"ServerSideEncryptionByDefault,omitempty"`
}

// ServerSideEncryptionByDefault selects the encryption algorithm.
type ServerSideEncryptionByDefault struct {
	SSEAlgorithm string `json:"SSEAlgorithm"`
}

// PublicAccessBlockConfiguration blocks public bucket access.
type PublicAccessBlockConfiguration struct {
	BlockPublicAcls       bool `json:"BlockPublicAcls"`
	BlockPublicPolicy     bool `json:"BlockPublicPolicy"`
	IgnorePublicAcls      bool `json:"IgnorePublicAcls"`
	RestrictPublicBuckets bool `json:"RestrictPublicBuckets"`
}

// NotificationConfiguration wires bucket events to targets.
type NotificationConfiguration struct {
	LambdaConfigurations []LambdaConfiguration `json:"LambdaConfigurations,omitempty"`
}

// LambdaConfiguration invokes a function on matching bucket events.
type LambdaConfiguration struct {
	Event    string              `json:"Event"`
	Filter   *NotificationFilter `json:"Filter,omitempty"`
	Function any                 `json:"Function"`
}

// NotificationFilter restricts events by object key.
type NotificationFilter struct {
	S3Key S3KeyFilter `json:"S3Key"`
}

// S3KeyFilter holds the key filter rules.
type S3KeyFilter struct {
	Rules []FilterRule `json:"Rules"`
}

// FilterRule matches an object key prefix or suffix.
type FilterRule struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

// LifecycleConfiguration holds object lifecycle rules.
type LifecycleConfiguration struct {
	Rules []LifecycleRule `json:"Rules"`
}

// LifecycleRule expires objects and housekeeping debris after a number of
// days.
type LifecycleRule struct {
	Id                                string                          `json:"Id,omitempty"`
	Status                            string                          `json:"Status"`
	Prefix                            string                          `json:"Prefix,omitempty"`
	ExpirationInDays                  int                             `json:"ExpirationInDays,omitempty"`
	NoncurrentVersionExpirationInDays int                             `json:"NoncurrentVersionExpirationInDays,omitempty"`
	AbortIncompleteMultipartUpload    *AbortIncompleteMultipartUpload `json:"AbortIncompleteMultipartUpload,omitempty"`
}

// AbortIncompleteMultipartUpload cleans up stalled multipart uploads.
type AbortIncompleteMultipartUpload struct {
	DaysAfterInitiation int `json:"DaysAfterInitiation"`
}
