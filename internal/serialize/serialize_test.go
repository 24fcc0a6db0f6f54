package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/intrinsics"
	"github.com/wirestack/wirestack/resources/dynamodb"
	"github.com/wirestack/wirestack/resources/lambda"
	"github.com/wirestack/wirestack/resources/s3"
)

func TestProperties_Table(t *testing.T) {
	table := dynamodb.Table{
		TableName: "test-users",
		AttributeDefinitions: []dynamodb.AttributeDefinition{
			{AttributeName: "id", AttributeType: "S"},
		},
		KeySchema: []dynamodb.KeySchemaElement{
			{AttributeName: "id", KeyType: "HASH"},
		},
		BillingMode:      "PAY_PER_REQUEST",
		SSESpecification: &dynamodb.SSESpecification{SSEEnabled: true},
		PointInTimeRecoverySpecification: &dynamodb.PointInTimeRecoverySpecification{
			PointInTimeRecoveryEnabled: true,
		},
	}

	props, err := Properties(table)
	require.NoError(t, err)

	assert.Equal(t, "test-users", props["TableName"])
	assert.Equal(t, "PAY_PER_REQUEST", props["BillingMode"])

	sse := props["SSESpecification"].(map[string]any)
	assert.Equal(t, true, sse["SSEEnabled"])

	attrs := props["AttributeDefinitions"].([]any)
	require.Len(t, attrs, 1)
	assert.Equal(t, "id", attrs[0].(map[string]any)["AttributeName"])
}

func TestProperties_OmitsZeroValues(t *testing.T) {
	bucket := s3.Bucket{BucketName: "test-data"}

	props, err := Properties(bucket)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"BucketName": "test-data"}, props)
}

func TestProperties_HandleAndAttrRef(t *testing.T) {
	fn := lambda.Function{
		FunctionName: "test-user-management",
		Runtime:      "python3.12",
		Handler:      "user_management.lambda_handler",
		Code:         lambda.Function_Code{S3Bucket: "artifacts", S3Key: "user.zip"},
		Role:         wirestack.AttrRef{Resource: "UserManagementRole", Attribute: "Arn"},
		Environment: &lambda.Function_Environment{
			Variables: map[string]any{
				"USER_TABLE_NAME": wirestack.Handle{LogicalID: "UsersTable"},
				"ENVIRONMENT":     "test",
			},
		},
	}

	props, err := Properties(fn)
	require.NoError(t, err)

	role := props["Role"].(map[string]any)
	assert.Equal(t, []any{"UserManagementRole", "Arn"}, role["Fn::GetAtt"])

	env := props["Environment"].(map[string]any)
	vars := env["Variables"].(map[string]any)
	assert.Equal(t, map[string]any{"Ref": "UsersTable"}, vars["USER_TABLE_NAME"])
	assert.Equal(t, "test", vars["ENVIRONMENT"])
}

func TestProperties_Intrinsics(t *testing.T) {
	bucket := s3.Bucket{
		BucketName: intrinsics.Sub{String: "${AWS::StackName}-data"},
	}

	props, err := Properties(bucket)
	require.NoError(t, err)

	name := props["BucketName"].(map[string]any)
	assert.Equal(t, "${AWS::StackName}-data", name["Fn::Sub"])
}

func TestProperties_JSONTagRename(t *testing.T) {
	type integration struct {
		Type_ string `json:"Type"`
	}

	props, err := Properties(integration{Type_: "AWS_PROXY"})
	require.NoError(t, err)

	assert.Equal(t, "AWS_PROXY", props["Type"])
	_, hasUnderscore := props["Type_"]
	assert.False(t, hasUnderscore)
}
