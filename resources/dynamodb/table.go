// Package dynamodb provides CloudFormation types for Amazon DynamoDB.
package dynamodb

// Table represents AWS::DynamoDB::Table.
//
// Ref returns the table name. GetAtt attributes: Arn, StreamArn.
type Table struct {
	TableName                        any                               `json:"TableName,omitempty"`
	AttributeDefinitions             []AttributeDefinition             `json:"AttributeDefinitions,omitempty"`
	KeySchema                        []KeySchemaElement                `json:"KeySchema,omitempty"`
	BillingMode                      string                            `json:"BillingMode,omitempty"`
	SSESpecification                 *SSESpecification                 `json:"SSESpecification,omitempty"`
	PointInTimeRecoverySpecification *PointInTimeRecoverySpecification `json:"PointInTimeRecoverySpecification,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Table) ResourceType() string { return "AWS::DynamoDB::Table" }

// AttributeDefinition describes a key attribute of the table.
type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"`
}

// KeySchemaElement maps an attribute to a key role (HASH or RANGE).
type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"`
}

// SSESpecification enables server-side encryption.
type SSESpecification struct {
	SSEEnabled bool   `json:"SSEEnabled"`
	SSEType    string `json:"SSEType,omitempty"`
}

// PointInTimeRecoverySpecification enables continuous backups.
type PointInTimeRecoverySpecification struct {
	PointInTimeRecoveryEnabled bool `json:"PointInTimeRecoveryEnabled"`
}
