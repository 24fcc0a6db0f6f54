package stack

import (
	"sort"
	"strings"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/intrinsics"
	"github.com/wirestack/wirestack/resources/apigateway"
	"github.com/wirestack/wirestack/resources/lambda"
	"github.com/wirestack/wirestack/resources/logs"
)

// corsAllowedHeaders is the header allowlist returned by every preflight
// response.
const corsAllowedHeaders = "'Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token'"

// accessLogFormat is the structured access log line for API stages.
const accessLogFormat = `{"requestId":"$context.requestId","ip":"$context.identity.sourceIp","requestTime":"$context.requestTime","httpMethod":"$context.httpMethod","path":"$context.path","status":"$context.status","responseLength":"$context.responseLength"}`

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
	"PATCH":  true,
}

// Route maps one HTTP method and path to a function.
type Route struct {
	Method string
	Path   string
	Fn     *Function
}

// EndpointGroupSpec describes one REST API and its routes.
type EndpointGroupSpec struct {
	// Name is the CamelCase group name ("UserApi").
	Name        string
	Description string
	Routes      []Route
	// RetainLogs keeps the access log group on stack teardown.
	RetainLogs bool
}

// EndpointGroup is a registered REST API.
type EndpointGroup struct {
	// Name is the group name the API was declared with.
	Name string
	// Api references the REST API resource.
	Api wirestack.Handle
	// Stage references the deployed stage.
	Stage wirestack.Handle
	// Routes are the declared routes.
	Routes []Route

	environment string
}

// BaseURL returns the invoke URL of the group's stage.
func (g *EndpointGroup) BaseURL() intrinsics.Join {
	return arnJoin(
		"https://", g.Api,
		".execute-api.", intrinsics.AWS_REGION,
		".", intrinsics.AWS_URL_SUFFIX,
		"/", g.environment,
	)
}

// pathNode is one API Gateway resource in a group's path tree.
type pathNode struct {
	ref     any // Handle or root-resource AttrRef
	methods []string
}

// addEndpointGroup registers a REST API, one resource per path segment, a
// proxy method per route, a CORS preflight method per routed resource, an
// access-logged stage named after the environment, and invoke permissions
// for every routed function. The deployment depends on every method so the
// stage never goes live half-wired.
func (s *Stack) addEndpointGroup(spec EndpointGroupSpec) *EndpointGroup {
	group := &EndpointGroup{
		Name:        spec.Name,
		Routes:      spec.Routes,
		environment: s.props.Environment,
	}

	if len(spec.Routes) == 0 {
		s.fail("%s: endpoint group has no routes", spec.Name)
		return group
	}

	api := s.builder.Add(spec.Name, apigateway.RestApi{
		Name:        s.resourceName(kebab(spec.Name)),
		Description: spec.Description,
	})
	group.Api = api

	nodes := map[string]*pathNode{
		"": {ref: api.Attr("RootResourceId")},
	}

	var methodIDs []string
	seen := make(map[string]bool)
	for _, route := range spec.Routes {
		method := strings.ToUpper(route.Method)
		if !allowedMethods[method] {
			s.fail("%s: unsupported method %q for %s", spec.Name, route.Method, route.Path)
			continue
		}
		if route.Fn == nil {
			s.fail("%s: route %s %s has no function", spec.Name, method, route.Path)
			continue
		}
		if !strings.HasPrefix(route.Path, "/") {
			s.fail("%s: route path %q must start with /", spec.Name, route.Path)
			continue
		}
		key := method + " " + route.Path
		if seen[key] {
			s.fail("%s: duplicate route %s", spec.Name, key)
			continue
		}
		seen[key] = true

		node := s.ensurePath(spec.Name, api, nodes, route.Path)
		node.methods = append(node.methods, method)

		methodID := spec.Name + pathTitle(route.Path) + methodTitle(method)
		methodIDs = append(methodIDs, methodID)
		s.builder.Add(methodID, apigateway.Method{
			RestApiId:         api,
			ResourceId:        node.ref,
			HttpMethod:        method,
			AuthorizationType: "NONE",
			Integration: &apigateway.Method_Integration{
				Type_:                 "AWS_PROXY",
				IntegrationHttpMethod: "POST",
				Uri:                   s.invocationURI(route.Fn),
			},
		})
	}

	methodIDs = append(methodIDs, s.addPreflight(spec.Name, api, nodes)...)

	deployment := s.builder.Add(spec.Name+"Deployment", apigateway.Deployment{
		RestApiId:   api,
		Description: spec.Description,
	})
	sort.Strings(methodIDs)
	for _, id := range methodIDs {
		s.builder.AddDependency(deployment.LogicalID, id)
	}

	accessLogs := s.builder.Add(spec.Name+"AccessLogs", logs.LogGroup{
		LogGroupName:    "/aws/apigateway/" + s.resourceName(kebab(spec.Name)),
		RetentionInDays: 30,
	})
	if spec.RetainLogs {
		s.builder.SetDeletionPolicy(accessLogs.LogicalID, "Retain")
	} else {
		s.builder.SetDeletionPolicy(accessLogs.LogicalID, "Delete")
	}

	group.Stage = s.builder.Add(spec.Name+"Stage", apigateway.Stage{
		RestApiId:    api,
		DeploymentId: deployment,
		StageName:    s.props.Environment,
		AccessLogSetting: &apigateway.Stage_AccessLogSetting{
			DestinationArn: accessLogs.Attr("Arn"),
			Format:         accessLogFormat,
		},
		MethodSettings: intrinsics.Any(apigateway.Stage_MethodSetting{
			ResourcePath:   "/*",
			HttpMethod:     "*",
			MetricsEnabled: true,
		}),
	})

	for _, fn := range routedFunctions(spec.Routes) {
		s.builder.Add(spec.Name+fn.Name+"Permission", lambda.Permission{
			FunctionName: fn.Handle,
			Action:       "lambda:InvokeFunction",
			Principal:    "apigateway.amazonaws.com",
			SourceArn: arnJoin(
				"arn:", intrinsics.AWS_PARTITION,
				":execute-api:", intrinsics.AWS_REGION,
				":", intrinsics.AWS_ACCOUNT_ID,
				":", api, "/*",
			),
		})
	}

	s.groups = append(s.groups, group)
	return group
}

// ensurePath registers the API Gateway resource chain for a path and returns
// its leaf node.
func (s *Stack) ensurePath(groupName string, api wirestack.Handle, nodes map[string]*pathNode, path string) *pathNode {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	prefix := ""
	parent := nodes[""]
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		prefix += "/" + segment
		node, ok := nodes[prefix]
		if !ok {
			handle := s.builder.Add(groupName+pathTitle(prefix)+"Resource", apigateway.Resource{
				RestApiId: api,
				ParentId:  parent.ref,
				PathPart:  segment,
			})
			node = &pathNode{ref: handle}
			nodes[prefix] = node
		}
		parent = node
	}
	return parent
}

// addPreflight registers one OPTIONS mock method per routed resource and
// returns the method logical IDs.
func (s *Stack) addPreflight(groupName string, api wirestack.Handle, nodes map[string]*pathNode) []string {
	paths := make([]string, 0, len(nodes))
	for path, node := range nodes {
		if len(node.methods) > 0 {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var ids []string
	for _, path := range paths {
		node := nodes[path]
		methods := append([]string(nil), node.methods...)
		methods = append(methods, "OPTIONS")
		sort.Strings(methods)

		headers := map[string]string{
			"method.response.header.Access-Control-Allow-Headers": corsAllowedHeaders,
			"method.response.header.Access-Control-Allow-Methods": "'" + strings.Join(methods, ",") + "'",
			"method.response.header.Access-Control-Allow-Origin":  "'*'",
		}
		exposed := map[string]bool{
			"method.response.header.Access-Control-Allow-Headers": true,
			"method.response.header.Access-Control-Allow-Methods": true,
			"method.response.header.Access-Control-Allow-Origin":  true,
		}

		id := groupName + pathTitle(path) + "Options"
		s.builder.Add(id, apigateway.Method{
			RestApiId:         api,
			ResourceId:        node.ref,
			HttpMethod:        "OPTIONS",
			AuthorizationType: "NONE",
			Integration: &apigateway.Method_Integration{
				Type_:            "MOCK",
				RequestTemplates: map[string]string{"application/json": `{"statusCode": 200}`},
				IntegrationResponses: intrinsics.Any(apigateway.Method_IntegrationResponse{
					StatusCode:         "200",
					ResponseParameters: headers,
				}),
			},
			MethodResponses: intrinsics.Any(apigateway.Method_MethodResponse{
				StatusCode:         "200",
				ResponseParameters: exposed,
			}),
		})
		ids = append(ids, id)
	}
	return ids
}

// invocationURI builds the API Gateway proxy invocation URI for a function.
func (s *Stack) invocationURI(fn *Function) intrinsics.Join {
	return arnJoin(
		"arn:", intrinsics.AWS_PARTITION,
		":apigateway:", intrinsics.AWS_REGION,
		":lambda:path/2015-03-31/functions/", fn.Handle.Attr("Arn"), "/invocations",
	)
}

// routedFunctions returns the distinct functions behind a route list, in
// first-use order.
func routedFunctions(routes []Route) []*Function {
	var fns []*Function
	seen := make(map[string]bool)
	for _, route := range routes {
		if route.Fn == nil || seen[route.Fn.Name] {
			continue
		}
		seen[route.Fn.Name] = true
		fns = append(fns, route.Fn)
	}
	return fns
}

// pathTitle converts a route path to a logical ID fragment:
// "/users/{id}" → "UsersId".
func pathTitle(path string) string {
	var b strings.Builder
	for _, segment := range strings.Split(strings.Trim(path, "/"), "/") {
		segment = strings.Trim(segment, "{}")
		for _, part := range strings.Split(segment, "-") {
			if part == "" {
				continue
			}
			b.WriteString(strings.ToUpper(part[:1]))
			b.WriteString(part[1:])
		}
	}
	return b.String()
}

// methodTitle converts an HTTP method to a logical ID fragment:
// "POST" → "Post".
func methodTitle(method string) string {
	method = strings.ToUpper(method)
	return method[:1] + strings.ToLower(method[1:])
}
