// Package stack composes the serverless application: database tables, a
// shared layer, four function-backed APIs, an object bucket with event
// wiring, a notification topic, and the outputs operators consume.
//
// Every cross-component reference travels through a handle returned by the
// producing component. Identifier wiring and permission grants are declared
// together as bindings, so the environment variable a function reads and the
// capabilities it holds on the referenced resource cannot drift apart.
package stack

import (
	"fmt"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/intrinsics"
)

// Capability is a declared permission a function holds over a resource.
type Capability string

const (
	// CapabilityRead allows reading items or objects.
	CapabilityRead Capability = "read"
	// CapabilityWrite allows creating, updating, and deleting items or objects.
	CapabilityWrite Capability = "write"
	// CapabilityPublish allows publishing messages to a topic.
	CapabilityPublish Capability = "publish"
	// CapabilityConsume marks a function as the delivery target of an event
	// source. It grants nothing on the function's role; the invoke
	// permission is attached to the function itself.
	CapabilityConsume Capability = "consume"
)

// Grant is the declared (function, resource, capability-set) relation. The
// emitter derives IAM policy statements from it and the verifier
// cross-checks it against the synthesized template, independently.
type Grant struct {
	Function     string
	Resource     string
	Capabilities []Capability
}

// Has reports whether the grant includes a capability.
func (g Grant) Has(c Capability) bool {
	for _, have := range g.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// Binding wires a resource identifier into a function's environment and
// declares the function's capabilities on that resource in one step.
type Binding struct {
	// EnvVar is the environment variable name carrying the identifier.
	EnvVar string
	// Resource is the handle of the bound resource.
	Resource wirestack.Handle
	// Value is the identifier wired into the environment (Ref or GetAtt).
	Value any
	// Capabilities the function needs on the resource.
	Capabilities []Capability

	statements []intrinsics.PolicyStatement
}

// TableHandle references a registered DynamoDB table. Its Ref is the table
// name.
type TableHandle struct {
	wirestack.Handle
}

// Arn returns the table ARN.
func (h TableHandle) Arn() wirestack.AttrRef { return h.Attr("Arn") }

// BucketHandle references a registered S3 bucket. Its Ref is the bucket
// name. Name carries the configured physical name for wiring that cannot
// reference the bucket resource without closing a dependency cycle.
type BucketHandle struct {
	wirestack.Handle
	Name string
}

// Arn returns the bucket ARN.
func (h BucketHandle) Arn() wirestack.AttrRef { return h.Attr("Arn") }

// ObjectsArn returns the ARN pattern covering every object in the bucket.
func (h BucketHandle) ObjectsArn() any {
	return intrinsics.Join{Values: intrinsics.Any(h.Arn(), "/*")}
}

// TopicHandle references a registered SNS topic. Its Ref is the topic ARN.
type TopicHandle struct {
	wirestack.Handle
}

// LayerHandle references the shared code layer. Its Ref is the layer
// version ARN.
type LayerHandle struct {
	wirestack.Handle
}

var tableActions = map[Capability][]string{
	CapabilityRead: {
		"dynamodb:BatchGetItem",
		"dynamodb:ConditionCheckItem",
		"dynamodb:DescribeTable",
		"dynamodb:GetItem",
		"dynamodb:Query",
		"dynamodb:Scan",
	},
	CapabilityWrite: {
		"dynamodb:BatchWriteItem",
		"dynamodb:DeleteItem",
		"dynamodb:PutItem",
		"dynamodb:UpdateItem",
	},
}

var bucketActions = map[Capability][]string{
	CapabilityRead:  {"s3:GetBucket*", "s3:GetObject*", "s3:List*"},
	CapabilityWrite: {"s3:Abort*", "s3:DeleteObject*", "s3:PutObject*"},
}

// BindTable wires a table name into EnvVar and grants the listed
// capabilities on the table.
func BindTable(envVar string, table TableHandle, caps ...Capability) Binding {
	return Binding{
		EnvVar:       envVar,
		Resource:     table.Handle,
		Value:        table.Handle,
		Capabilities: caps,
		statements: []intrinsics.PolicyStatement{{
			Effect:   "Allow",
			Action:   actionsFor(tableActions, caps),
			Resource: table.Arn(),
		}},
	}
}

// BindBucket wires a bucket name into EnvVar and grants the listed
// capabilities on the bucket and its objects.
//
// The environment value and the policy ARNs are built from the configured
// bucket name, not from a reference: the bucket's notification
// configuration references the function, the function references its role,
// so a reference from either back to the bucket would close a dependency
// cycle the provisioning engine rejects.
func BindBucket(envVar string, bucket BucketHandle, caps ...Capability) Binding {
	return Binding{
		EnvVar:       envVar,
		Resource:     bucket.Handle,
		Value:        bucket.Name,
		Capabilities: caps,
		statements: []intrinsics.PolicyStatement{{
			Effect:   "Allow",
			Action:   actionsFor(bucketActions, caps),
			Resource: intrinsics.Any(bucketArn(bucket.Name), bucketArn(bucket.Name+"/*")),
		}},
	}
}

// bucketArn builds an S3 ARN from a bucket name.
func bucketArn(name string) intrinsics.Join {
	return intrinsics.Join{Values: intrinsics.Any("arn:", intrinsics.AWS_PARTITION, ":s3:::", name)}
}

// BindTopic wires a topic ARN into EnvVar. CapabilityPublish grants
// sns:Publish; CapabilityConsume only records that the function is the
// topic's delivery target.
func BindTopic(envVar string, topic TopicHandle, caps ...Capability) Binding {
	b := Binding{
		EnvVar:       envVar,
		Resource:     topic.Handle,
		Value:        topic.Handle,
		Capabilities: caps,
	}
	for _, c := range caps {
		if c == CapabilityPublish {
			b.statements = append(b.statements, intrinsics.PolicyStatement{
				Effect:   "Allow",
				Action:   []string{"sns:Publish"},
				Resource: topic.Handle,
			})
		}
	}
	return b
}

func actionsFor(byCapability map[Capability][]string, caps []Capability) []string {
	var actions []string
	for _, c := range caps {
		actions = append(actions, byCapability[c]...)
	}
	return actions
}

func validCapabilities(caps []Capability) error {
	if len(caps) == 0 {
		return fmt.Errorf("binding declares no capabilities")
	}
	for _, c := range caps {
		switch c {
		case CapabilityRead, CapabilityWrite, CapabilityPublish, CapabilityConsume:
		default:
			return fmt.Errorf("unknown capability %q", c)
		}
	}
	return nil
}
