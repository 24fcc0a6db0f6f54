// Package apigateway provides CloudFormation types for Amazon API Gateway
// REST APIs.
package apigateway

// RestApi represents AWS::ApiGateway::RestApi.
//
// Ref returns the API ID. GetAtt attributes: RootResourceId.
type RestApi struct {
	Name        any    `json:"Name,omitempty"`
	Description string `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (RestApi) ResourceType() string { return "AWS::ApiGateway::RestApi" }

// Resource represents AWS::ApiGateway::Resource, a single path segment.
type Resource struct {
	RestApiId any    `json:"RestApiId"`
	ParentId  any    `json:"ParentId"`
	PathPart  string `json:"PathPart"`
}

// ResourceType returns the CloudFormation type.
func (Resource) ResourceType() string { return "AWS::ApiGateway::Resource" }

// Method represents AWS::ApiGateway::Method.
type Method struct {
	RestApiId         any                `json:"RestApiId"`
	ResourceId        any                `json:"ResourceId"`
	HttpMethod        string             `json:"HttpMethod"`
	AuthorizationType string             `json:"AuthorizationType,omitempty"`
	Integration       *Method_Integration `json:"Integration,omitempty"`
	MethodResponses   []any              `json:"MethodResponses,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Method) ResourceType() string { return "AWS::ApiGateway::Method" }

// Method_Integration configures the backend integration for a method.
type Method_Integration struct {
	Type_                 string            `json:"Type"`
	IntegrationHttpMethod string            `json:"IntegrationHttpMethod,omitempty"`
	Uri                   any               `json:"Uri,omitempty"`
	RequestTemplates      map[string]string `json:"RequestTemplates,omitempty"`
	IntegrationResponses  []any             `json:"IntegrationResponses,omitempty"`
}

// Method_IntegrationResponse maps an integration result to a method response.
type Method_IntegrationResponse struct {
	StatusCode         string            `json:"StatusCode"`
	ResponseParameters map[string]string `json:"ResponseParameters,omitempty"`
	ResponseTemplates  map[string]string `json:"ResponseTemplates,omitempty"`
}

// Method_MethodResponse declares a response the method can return.
type Method_MethodResponse struct {
	StatusCode         string          `json:"StatusCode"`
	ResponseParameters map[string]bool `json:"ResponseParameters,omitempty"`
}

// Deployment represents AWS::ApiGateway::Deployment.
type Deployment struct {
	RestApiId   any    `json:"RestApiId"`
	Description string `json:"Description,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Deployment) ResourceType() string { return "AWS::ApiGateway::Deployment" }

// Stage represents AWS::ApiGateway::Stage.
type Stage struct {
	RestApiId        any                     `json:"RestApiId"`
	DeploymentId     any                     `json:"DeploymentId"`
	StageName        string                  `json:"StageName"`
	AccessLogSetting *Stage_AccessLogSetting `json:"AccessLogSetting,omitempty"`
	MethodSettings   []any                   `json:"MethodSettings,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Stage) ResourceType() string { return "AWS::ApiGateway::Stage" }

// Stage_AccessLogSetting routes access logs to a destination.
type Stage_AccessLogSetting struct {
	DestinationArn any    `json:"DestinationArn"`
	Format         string `json:"Format"`
}

// Stage_MethodSetting configures logging/metrics per method scope.
type Stage_MethodSetting struct {
	ResourcePath   string `json:"ResourcePath,omitempty"`
	HttpMethod     string `json:"HttpMethod,omitempty"`
	LoggingLevel   string `json:"LoggingLevel,omitempty"`
	MetricsEnabled bool   `json:"MetricsEnabled,omitempty"`
}
