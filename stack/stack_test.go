package stack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/baseline"
	"github.com/wirestack/wirestack/internal/differ"
	"github.com/wirestack/wirestack/internal/template"
)

func testStack(t *testing.T) (*Stack, *wirestack.Template) {
	t.Helper()
	s, err := New(Props{Environment: "test", LogLevel: "info"})
	require.NoError(t, err)
	tmpl, err := s.Synthesize()
	require.NoError(t, err)
	return s, tmpl
}

func TestNew_InvalidEnvironment(t *testing.T) {
	for _, env := range []string{"", "Prod", "1dev", "dev_1", "abcdefghijklmnopqrstu"} {
		_, err := New(Props{Environment: env})
		assert.Error(t, err, "environment %q", env)
	}
}

func TestSynthesize_ResourceNaming(t *testing.T) {
	_, tmpl := testStack(t)

	names := map[string]string{
		"UsersTable":             "test-users",
		"ProcessedDataTable":     "test-processed-data",
		"NotificationsTable":     "test-notifications",
		"DataBucket":             "test-data",
		"UserManagementFunction": "test-user-management",
		"HealthCheckFunction":    "test-health-check",
	}
	keys := map[string]string{
		"UsersTable":             "TableName",
		"ProcessedDataTable":     "TableName",
		"NotificationsTable":     "TableName",
		"DataBucket":             "BucketName",
		"UserManagementFunction": "FunctionName",
		"HealthCheckFunction":    "FunctionName",
	}
	for id, want := range names {
		res, ok := tmpl.Resources[id]
		require.True(t, ok, "missing resource %s", id)
		assert.Equal(t, want, res.Properties[keys[id]], id)
	}

	topic := tmpl.Resources["NotificationTopic"]
	assert.Equal(t, "test-notifications", topic.Properties["TopicName"])
}

func TestSynthesize_Deterministic(t *testing.T) {
	_, first := testStack(t)
	_, second := testStack(t)

	a, err := template.ToJSON(first)
	require.NoError(t, err)
	b, err := template.ToJSON(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSynthesize_Idempotent(t *testing.T) {
	_, first := testStack(t)
	_, second := testStack(t)

	result := differ.Compare(first, second)
	assert.True(t, result.Empty(), "expected no drift between identical syntheses")
}

func TestSynthesize_Tags(t *testing.T) {
	s, err := New(Props{
		Environment: "test",
		ExtraTags:   map[string]string{"team": "platform"},
	})
	require.NoError(t, err)
	tmpl, err := s.Synthesize()
	require.NoError(t, err)

	for id, res := range tmpl.Resources {
		if !taggableTypes[res.Type] {
			continue
		}
		tags, ok := res.Properties["Tags"].([]any)
		require.True(t, ok, "%s has no tags", id)

		byKey := make(map[string]string)
		for _, tag := range tags {
			entry := tag.(map[string]any)
			byKey[entry["Key"].(string)] = entry["Value"].(string)
		}
		assert.Equal(t, "serverless-app", byKey["project"], id)
		assert.Equal(t, "test", byKey["environment"], id)
		assert.Equal(t, "wirestack", byKey["managed-by"], id)
		assert.Equal(t, "platform", byKey["team"], id)
	}
}

func TestSynthesize_Tables(t *testing.T) {
	_, tmpl := testStack(t)

	for _, id := range []string{"UsersTable", "ProcessedDataTable", "NotificationsTable"} {
		res := tmpl.Resources[id]
		assert.Equal(t, "AWS::DynamoDB::Table", res.Type, id)
		assert.Equal(t, "Delete", res.DeletionPolicy, id)
		assert.Equal(t, "PAY_PER_REQUEST", res.Properties["BillingMode"], id)

		pitr := res.Properties["PointInTimeRecoverySpecification"].(map[string]any)
		assert.Equal(t, true, pitr["PointInTimeRecoveryEnabled"], id)
	}
}

func TestSynthesize_EndpointGroup(t *testing.T) {
	_, tmpl := testStack(t)

	idResource := tmpl.Resources["UserApiUsersIdResource"]
	assert.Equal(t, "{id}", idResource.Properties["PathPart"])

	for _, id := range []string{"UserApiUsersPost", "UserApiUsersGet", "UserApiUsersIdGet"} {
		res, ok := tmpl.Resources[id]
		require.True(t, ok, "missing method %s", id)
		integration := res.Properties["Integration"].(map[string]any)
		assert.Equal(t, "AWS_PROXY", integration["Type"], id)
	}

	deployment := tmpl.Resources["UserApiDeployment"]
	assert.ElementsMatch(t, []string{
		"UserApiUsersPost", "UserApiUsersGet", "UserApiUsersIdGet",
		"UserApiUsersOptions", "UserApiUsersIdOptions",
	}, deployment.DependsOn)

	stage := tmpl.Resources["UserApiStage"]
	assert.Equal(t, "test", stage.Properties["StageName"])
	_, logged := stage.Properties["AccessLogSetting"].(map[string]any)
	assert.True(t, logged, "stage has no access logging")

	settings := stage.Properties["MethodSettings"].([]any)
	require.Len(t, settings, 1)
	setting := settings[0].(map[string]any)
	assert.Equal(t, "/*", setting["ResourcePath"])
	assert.Equal(t, "*", setting["HttpMethod"])
	assert.Equal(t, true, setting["MetricsEnabled"])
}

func TestSynthesize_CORSPreflight(t *testing.T) {
	_, tmpl := testStack(t)

	options := tmpl.Resources["UserApiUsersOptions"]
	integration := options.Properties["Integration"].(map[string]any)
	assert.Equal(t, "MOCK", integration["Type"])

	responses := integration["IntegrationResponses"].([]any)
	params := responses[0].(map[string]any)["ResponseParameters"].(map[string]any)
	assert.Equal(t, "'GET,OPTIONS,POST'",
		params["method.response.header.Access-Control-Allow-Methods"])
	assert.Equal(t, corsAllowedHeaders,
		params["method.response.header.Access-Control-Allow-Headers"])
}

func TestSynthesize_BucketNotification(t *testing.T) {
	_, tmpl := testStack(t)

	bucket := tmpl.Resources["DataBucket"]
	assert.Contains(t, bucket.DependsOn, "DataBucketPermission")

	notification := bucket.Properties["NotificationConfiguration"].(map[string]any)
	configs := notification["LambdaConfigurations"].([]any)
	require.Len(t, configs, 1)
	config := configs[0].(map[string]any)
	assert.Equal(t, "s3:ObjectCreated:*", config["Event"])

	rules := config["Filter"].(map[string]any)["S3Key"].(map[string]any)["Rules"].([]any)
	rule := rules[0].(map[string]any)
	assert.Equal(t, "prefix", rule["Name"])
	assert.Equal(t, "uploads/", rule["Value"])

	permission := tmpl.Resources["DataBucketPermission"]
	assert.Equal(t, "s3.amazonaws.com", permission.Properties["Principal"])
	_, hasSourceArn := permission.Properties["SourceArn"]
	assert.False(t, hasSourceArn, "S3 permission must not reference the bucket")
}

func TestSynthesize_BucketLifecycle(t *testing.T) {
	_, tmpl := testStack(t)

	bucket := tmpl.Resources["DataBucket"]
	lifecycle := bucket.Properties["LifecycleConfiguration"].(map[string]any)
	rules := lifecycle["Rules"].([]any)
	require.Len(t, rules, 1)

	rule := rules[0].(map[string]any)
	assert.Equal(t, "Enabled", rule["Status"])
	assert.EqualValues(t, 30, rule["NoncurrentVersionExpirationInDays"])
	abort := rule["AbortIncompleteMultipartUpload"].(map[string]any)
	assert.EqualValues(t, 7, abort["DaysAfterInitiation"])
}

func TestSynthesize_TopicFanIn(t *testing.T) {
	_, tmpl := testStack(t)

	subscription := tmpl.Resources["NotificationSubscription"]
	assert.Equal(t, "lambda", subscription.Properties["Protocol"])
	assert.Equal(t, map[string]any{"Ref": "NotificationTopic"}, subscription.Properties["TopicArn"])

	permission := tmpl.Resources["NotificationTopicPermission"]
	assert.Equal(t, "sns.amazonaws.com", permission.Properties["Principal"])

	logs := tmpl.Resources["NotificationApiAccessLogs"]
	assert.Equal(t, "Retain", logs.DeletionPolicy)
}

func TestSynthesize_FunctionEnvironment(t *testing.T) {
	_, tmpl := testStack(t)

	fn := tmpl.Resources["NotificationFunction"]
	env := fn.Properties["Environment"].(map[string]any)
	vars := env["Variables"].(map[string]any)

	assert.Equal(t, "test", vars["ENVIRONMENT"])
	assert.Equal(t, "INFO", vars["LOG_LEVEL"])
	assert.Equal(t, map[string]any{"Ref": "NotificationsTable"}, vars["NOTIFICATION_TABLE_NAME"])
	assert.Equal(t, map[string]any{"Ref": "NotificationTopic"}, vars["SNS_TOPIC_ARN"])

	processor := tmpl.Resources["DataProcessorFunction"]
	processorVars := processor.Properties["Environment"].(map[string]any)["Variables"].(map[string]any)
	assert.Equal(t, map[string]any{"Ref": "ProcessedDataTable"}, processorVars["PROCESSED_DATA_TABLE_NAME"])
	assert.Equal(t, "test-data", processorVars["DATA_BUCKET_NAME"],
		"bucket wiring carries the configured name, not a reference back into the cycle")

	health := tmpl.Resources["HealthCheckFunction"]
	healthVars := health.Properties["Environment"].(map[string]any)["Variables"].(map[string]any)
	assert.Len(t, healthVars, 2, "health check should carry only ENVIRONMENT and LOG_LEVEL")
	_, hasLayers := health.Properties["Layers"]
	assert.False(t, hasLayers, "health check should not attach the common layer")
}

func TestSynthesize_Outputs(t *testing.T) {
	_, tmpl := testStack(t)

	for _, name := range []string{
		"UserApiEndpoint", "ProcessorApiEndpoint", "NotificationApiEndpoint",
		"HealthApiEndpoint", "DataBucketName", "NotificationTopicArn",
	} {
		_, ok := tmpl.Outputs[name]
		assert.True(t, ok, "missing output %s", name)
	}
}

func TestBaseline_PassesWithDeclaredExceptions(t *testing.T) {
	s, tmpl := testStack(t)

	report, err := baseline.Evaluate(tmpl, s.Exceptions())
	require.NoError(t, err)
	assert.False(t, report.Failed(), "unsuppressed findings: %v", report.Findings)
	assert.NotEmpty(t, report.Suppressed, "expected the declared exceptions to be exercised")
}

func TestBaseline_FailsWithoutExceptions(t *testing.T) {
	_, tmpl := testStack(t)

	report, err := baseline.Evaluate(tmpl, nil)
	require.NoError(t, err)
	assert.True(t, report.Failed(), "managed policy findings should fail without exceptions")
}

// composeBare builds an empty composition for wiring-validation tests.
func composeBare() *Stack {
	return &Stack{
		props:   Props{Environment: "test", LogLevel: "info", ArtifactBucket: "test-serverless-artifacts"},
		builder: template.NewBuilder("wiring validation"),
	}
}

func TestAddEndpointGroup_RejectsBadRoutes(t *testing.T) {
	tests := []struct {
		name   string
		routes func(fn *Function) []Route
		want   string
	}{
		{
			name: "duplicate route",
			routes: func(fn *Function) []Route {
				return []Route{
					{Method: "POST", Path: "/echo", Fn: fn},
					{Method: "POST", Path: "/echo", Fn: fn},
				}
			},
			want: "duplicate route POST /echo",
		},
		{
			name: "unsupported method",
			routes: func(fn *Function) []Route {
				return []Route{{Method: "TRACE", Path: "/echo", Fn: fn}}
			},
			want: `unsupported method "TRACE"`,
		},
		{
			name: "missing function",
			routes: func(fn *Function) []Route {
				return []Route{{Method: "GET", Path: "/echo"}}
			},
			want: "route GET /echo has no function",
		},
		{
			name: "relative path",
			routes: func(fn *Function) []Route {
				return []Route{{Method: "GET", Path: "echo", Fn: fn}}
			},
			want: `route path "echo" must start with /`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := composeBare()
			fn := s.addFunction(FunctionSpec{Name: "Echo", Handler: "echo.handler"})
			s.addEndpointGroup(EndpointGroupSpec{Name: "EchoApi", Routes: tt.routes(fn)})

			err := errors.Join(s.errs...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAddEndpointGroup_RejectsEmptyGroup(t *testing.T) {
	s := composeBare()
	s.addEndpointGroup(EndpointGroupSpec{Name: "EchoApi"})

	err := errors.Join(s.errs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "endpoint group has no routes")
}

func TestBind_RejectsDuplicateEnvVar(t *testing.T) {
	s := composeBare()
	table := s.addTable("EchoTable", "echo")
	s.addFunction(FunctionSpec{
		Name:    "Echo",
		Handler: "echo.handler",
		Bindings: []Binding{
			BindTable("ECHO_TABLE_NAME", table, CapabilityRead),
			BindTable("ECHO_TABLE_NAME", table, CapabilityWrite),
		},
	})

	err := errors.Join(s.errs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate environment variable ECHO_TABLE_NAME")
}

func TestBind_RejectsUnknownCapability(t *testing.T) {
	s := composeBare()
	table := s.addTable("EchoTable", "echo")
	s.addFunction(FunctionSpec{
		Name:     "Echo",
		Handler:  "echo.handler",
		Bindings: []Binding{BindTable("ECHO_TABLE_NAME", table, Capability("admin"))},
	})

	err := errors.Join(s.errs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown capability "admin"`)
}

func TestBindLate_RequiresDeclaredBindings(t *testing.T) {
	s := composeBare()
	table := s.addTable("EchoTable", "echo")
	fn := s.addFunction(FunctionSpec{Name: "Echo", Handler: "echo.handler"})
	s.bindLate(fn, BindTable("ECHO_TABLE_NAME", table, CapabilityRead))

	err := errors.Join(s.errs...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot bind ECHO_TABLE_NAME")
}

func TestKebab(t *testing.T) {
	assert.Equal(t, "user-management", kebab("UserManagement"))
	assert.Equal(t, "health-check", kebab("HealthCheck"))
	assert.Equal(t, "notification", kebab("Notification"))
}
