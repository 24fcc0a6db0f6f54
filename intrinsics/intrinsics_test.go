package intrinsics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestRef(t *testing.T) {
	assert.JSONEq(t, `{"Ref":"UsersTable"}`, marshal(t, Ref{"UsersTable"}))
}

func TestGetAtt(t *testing.T) {
	got := marshal(t, GetAtt{Resource: "NotificationTopic", Attribute: "TopicName"})
	assert.JSONEq(t, `{"Fn::GetAtt":["NotificationTopic","TopicName"]}`, got)
}

func TestSub(t *testing.T) {
	got := marshal(t, Sub{String: "${AWS::StackName}-users"})
	assert.JSONEq(t, `{"Fn::Sub":"${AWS::StackName}-users"}`, got)
}

func TestSubWithMap(t *testing.T) {
	got := marshal(t, SubWithMap{
		String: "${Env}-users",
		Map:    Json{"Env": "test"},
	})
	assert.JSONEq(t, `{"Fn::Sub":["${Env}-users",{"Env":"test"}]}`, got)
}

func TestJoin(t *testing.T) {
	got := marshal(t, Join{Delimiter: "", Values: Any("arn:aws:execute-api:", AWS_REGION)})
	assert.JSONEq(t, `{"Fn::Join":["",["arn:aws:execute-api:",{"Ref":"AWS::Region"}]]}`, got)
}

func TestPseudoParameters(t *testing.T) {
	assert.JSONEq(t, `{"Ref":"AWS::Region"}`, marshal(t, AWS_REGION))
	assert.JSONEq(t, `{"Ref":"AWS::AccountId"}`, marshal(t, AWS_ACCOUNT_ID))
	assert.JSONEq(t, `{"Ref":"AWS::StackName"}`, marshal(t, AWS_STACK_NAME))
}

func TestPolicyDocument(t *testing.T) {
	doc := NewPolicyDocument(PolicyStatement{
		Effect:    "Allow",
		Principal: ServicePrincipal{"lambda.amazonaws.com"},
		Action:    "sts:AssumeRole",
	})

	got := marshal(t, doc)
	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [{
			"Effect": "Allow",
			"Principal": {"Service": "lambda.amazonaws.com"},
			"Action": "sts:AssumeRole"
		}]
	}`, got)
}

func TestDenyInsecureTransportStatement(t *testing.T) {
	stmt := PolicyStatement{
		Sid:       "DenyInsecureTransport",
		Effect:    "Deny",
		Principal: AllPrincipal,
		Action:    "s3:*",
		Condition: Json{Bool: Json{"aws:SecureTransport": "false"}},
	}

	got := marshal(t, stmt)
	assert.JSONEq(t, `{
		"Sid": "DenyInsecureTransport",
		"Effect": "Deny",
		"Principal": "*",
		"Action": "s3:*",
		"Condition": {"Bool": {"aws:SecureTransport": "false"}}
	}`, got)
}
