package stack

import (
	"strings"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/intrinsics"
	"github.com/wirestack/wirestack/resources/iam"
	"github.com/wirestack/wirestack/resources/lambda"
)

const (
	functionRuntime = "python3.9"

	defaultMemorySize = 256
	defaultTimeout    = 30
)

// basicExecutionRole is the managed policy that lets a function deliver its
// own logs. Attaching it raises a WS001 finding, accepted stack-wide.
var basicExecutionRole = arnJoin(
	"arn:", intrinsics.AWS_PARTITION,
	":iam::aws:policy/service-role/AWSLambdaBasicExecutionRole",
)

// FunctionSpec describes one application function.
type FunctionSpec struct {
	// Name is the CamelCase component name ("UserManagement"). Logical IDs
	// and the physical function name derive from it.
	Name        string
	Description string
	// Handler is the artifact entry point ("user_management.handler").
	Handler string
	// MemorySize in MB; zero means the 256 MB default.
	MemorySize int
	// Timeout in seconds; zero means the 30 s default.
	Timeout int
	// Layer is attached when populated.
	Layer LayerHandle
	// Bindings wire resource identifiers into the environment and declare
	// the function's capabilities on them.
	Bindings []Binding
}

// Function is a registered application function.
type Function struct {
	// Name is the component name the function was declared with.
	Name string
	// Handle references the Lambda function resource.
	Handle wirestack.Handle
	// Role references the function's execution role.
	Role wirestack.Handle
	// Bindings are the resource bindings the function was declared with.
	Bindings []Binding

	// env and policy are shared with the registered resources, so bindings
	// added after registration still land in the template.
	env    map[string]any
	policy *intrinsics.PolicyDocument
}

// addFunction registers an execution role and a function. The role carries
// the basic execution managed policy plus one inline policy derived from the
// bindings; the environment carries ENVIRONMENT, LOG_LEVEL, and one variable
// per binding. Both derive from the same declaration.
func (s *Stack) addFunction(spec FunctionSpec) *Function {
	if spec.MemorySize == 0 {
		spec.MemorySize = defaultMemorySize
	}
	if spec.Timeout == 0 {
		spec.Timeout = defaultTimeout
	}

	env := map[string]any{
		"ENVIRONMENT": s.props.Environment,
		"LOG_LEVEL":   strings.ToUpper(s.props.LogLevel),
	}
	role := iam.Role{
		AssumeRolePolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
			Effect:    "Allow",
			Principal: intrinsics.ServicePrincipal{"lambda.amazonaws.com"},
			Action:    "sts:AssumeRole",
		}),
		ManagedPolicyArns: intrinsics.Any(basicExecutionRole),
	}
	policy := &intrinsics.PolicyDocument{Version: "2012-10-17"}
	if len(spec.Bindings) > 0 {
		role.Policies = []iam.Role_Policy{{
			PolicyName:     kebab(spec.Name) + "-grants",
			PolicyDocument: policy,
		}}
	}
	roleHandle := s.builder.Add(spec.Name+"Role", role)

	fn := lambda.Function{
		FunctionName: s.resourceName(kebab(spec.Name)),
		Description:  spec.Description,
		Runtime:      functionRuntime,
		Handler:      spec.Handler,
		Code: lambda.Function_Code{
			S3Bucket: s.props.ArtifactBucket,
			S3Key:    "functions/" + kebab(spec.Name) + ".zip",
		},
		Role:        roleHandle.Attr("Arn"),
		MemorySize:  spec.MemorySize,
		Timeout:     spec.Timeout,
		Environment: &lambda.Function_Environment{Variables: env},
	}
	if !spec.Layer.IsZero() {
		fn.Layers = intrinsics.Any(spec.Layer.Handle)
	}
	handle := s.builder.Add(spec.Name+"Function", fn)

	registered := &Function{
		Name:   spec.Name,
		Handle: handle,
		Role:   roleHandle,
		env:    env,
		policy: policy,
	}
	s.functions = append(s.functions, registered)

	for _, b := range spec.Bindings {
		s.bind(registered, b)
	}
	return registered
}

// bind applies a binding to a registered function: one environment variable,
// the derived policy statements, and the recorded grant.
func (s *Stack) bind(fn *Function, b Binding) {
	if err := validCapabilities(b.Capabilities); err != nil {
		s.fail("%s binding %s: %v", fn.Name, b.EnvVar, err)
		return
	}
	if _, dup := fn.env[b.EnvVar]; dup {
		s.fail("%s: duplicate environment variable %s", fn.Name, b.EnvVar)
		return
	}
	fn.env[b.EnvVar] = b.Value
	for _, stmt := range b.statements {
		fn.policy.Statement = append(fn.policy.Statement, stmt)
	}
	fn.Bindings = append(fn.Bindings, b)
	s.grants = append(s.grants, Grant{
		Function:     fn.Handle.LogicalID,
		Resource:     b.Resource.LogicalID,
		Capabilities: b.Capabilities,
	})
}

// bindLate attaches a binding to a function whose resource only exists after
// the function was registered, like the bucket the processor both writes and
// is triggered by. The function must have been declared with at least one
// binding, or its role carries no inline policy to extend.
func (s *Stack) bindLate(fn *Function, b Binding) {
	if len(fn.Bindings) == 0 {
		s.fail("%s: cannot bind %s to a function declared without bindings", fn.Name, b.EnvVar)
		return
	}
	s.bind(fn, b)
}
