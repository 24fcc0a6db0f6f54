package wirestack

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandle_MarshalJSON(t *testing.T) {
	h := Handle{LogicalID: "UsersTable"}

	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Ref":"UsersTable"}`, string(data))
}

func TestHandle_Attr(t *testing.T) {
	h := Handle{LogicalID: "NotificationTopic"}

	data, err := json.Marshal(h.Attr("TopicName"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Fn::GetAtt":["NotificationTopic","TopicName"]}`, string(data))
}

func TestAttrRef_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		ref      AttrRef
		expected string
	}{
		{
			name:     "role arn",
			ref:      AttrRef{Resource: "UserManagementRole", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["UserManagementRole","Arn"]}`,
		},
		{
			name:     "bucket arn",
			ref:      AttrRef{Resource: "DataBucket", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["DataBucket","Arn"]}`,
		},
		{
			name:     "function arn",
			ref:      AttrRef{Resource: "DataProcessorFunction", Attribute: "Arn"},
			expected: `{"Fn::GetAtt":["DataProcessorFunction","Arn"]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.ref)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestAttrRef_IsZero(t *testing.T) {
	assert.True(t, AttrRef{}.IsZero())
	assert.False(t, AttrRef{Resource: "UsersTable"}.IsZero())
	assert.False(t, AttrRef{Attribute: "Arn"}.IsZero())
	assert.True(t, Handle{}.IsZero())
	assert.False(t, Handle{LogicalID: "UsersTable"}.IsZero())
}

func TestTemplate_MarshalJSON(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              "test stack",
		Resources: map[string]ResourceDef{
			"UsersTable": {
				Type:           "AWS::DynamoDB::Table",
				Properties:     map[string]any{"TableName": "test-users"},
				DeletionPolicy: "Delete",
			},
		},
		Outputs: map[string]Output{
			"UserTableName": {
				Description: "Users table name",
				Value:       Handle{LogicalID: "UsersTable"},
			},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))

	resources := parsed["Resources"].(map[string]any)
	table := resources["UsersTable"].(map[string]any)
	assert.Equal(t, "AWS::DynamoDB::Table", table["Type"])
	assert.Equal(t, "Delete", table["DeletionPolicy"])

	outputs := parsed["Outputs"].(map[string]any)
	out := outputs["UserTableName"].(map[string]any)
	assert.Equal(t, map[string]any{"Ref": "UsersTable"}, out["Value"])
}

func TestTemplate_RoundTrip(t *testing.T) {
	tmpl := Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Resources: map[string]ResourceDef{
			"DataBucket": {
				Type:       "AWS::S3::Bucket",
				Properties: map[string]any{"BucketName": "test-data"},
				DependsOn:  []string{"DataProcessorFunction"},
			},
		},
	}

	data, err := json.Marshal(tmpl)
	require.NoError(t, err)

	var decoded Template
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tmpl.Resources["DataBucket"].Type, decoded.Resources["DataBucket"].Type)
	assert.Equal(t, tmpl.Resources["DataBucket"].DependsOn, decoded.Resources["DataBucket"].DependsOn)
}
