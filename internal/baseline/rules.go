package baseline

import (
	"fmt"
	"strings"

	wirestack "github.com/wirestack/wirestack"
)

// IamManagedPolicy flags IAM roles that attach AWS managed policies.
// Managed policies grant broader permissions than a scoped inline policy.
type IamManagedPolicy struct{}

func (IamManagedPolicy) ID() string { return "WS001" }
func (IamManagedPolicy) Description() string {
	return "IAM role uses an AWS managed policy"
}

func (r IamManagedPolicy) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::IAM::Role" {
			continue
		}
		arns, _ := res.Properties["ManagedPolicyArns"].([]any)
		if len(arns) == 0 {
			continue
		}
		findings = append(findings, Finding{
			Rule:     r.ID(),
			Scope:    id,
			Severity: SeverityError,
			Message:  fmt.Sprintf("role attaches %d managed policy ARN(s)", len(arns)),
		})
	}
	return findings
}

// IamWildcard flags Allow statements whose actions or resources contain
// wildcards.
type IamWildcard struct{}

func (IamWildcard) ID() string { return "WS002" }
func (IamWildcard) Description() string {
	return "IAM policy statement allows wildcard actions or resources"
}

func (r IamWildcard) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::IAM::Role" {
			continue
		}
		policies, _ := res.Properties["Policies"].([]any)
		for _, p := range policies {
			policy, _ := p.(map[string]any)
			doc, _ := policy["PolicyDocument"].(map[string]any)
			statements, _ := doc["Statement"].([]any)
			for _, s := range statements {
				stmt, _ := s.(map[string]any)
				if effect, _ := stmt["Effect"].(string); effect != "Allow" {
					continue
				}
				if hasWildcard(stmt["Action"]) || hasWildcard(stmt["Resource"]) {
					findings = append(findings, Finding{
						Rule:     r.ID(),
						Scope:    id,
						Severity: SeverityError,
						Message:  "inline policy statement contains a wildcard action or resource",
					})
				}
			}
		}
	}
	return findings
}

// S3PublicAccess flags buckets without a full public access block.
type S3PublicAccess struct{}

func (S3PublicAccess) ID() string { return "WS003" }
func (S3PublicAccess) Description() string {
	return "S3 bucket does not block all public access"
}

func (r S3PublicAccess) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::S3::Bucket" {
			continue
		}
		block, _ := res.Properties["PublicAccessBlockConfiguration"].(map[string]any)
		if !boolProp(block, "BlockPublicAcls") ||
			!boolProp(block, "BlockPublicPolicy") ||
			!boolProp(block, "IgnorePublicAcls") ||
			!boolProp(block, "RestrictPublicBuckets") {
			findings = append(findings, Finding{
				Rule:     r.ID(),
				Scope:    id,
				Severity: SeverityError,
				Message:  "bucket must block all public access",
			})
		}
	}
	return findings
}

// S3InsecureTransport flags buckets without a deny policy for plain HTTP.
type S3InsecureTransport struct{}

func (S3InsecureTransport) ID() string { return "WS004" }
func (S3InsecureTransport) Description() string {
	return "S3 bucket does not enforce SSL-only transport"
}

func (r S3InsecureTransport) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::S3::Bucket" {
			continue
		}
		if !hasSecureTransportPolicy(t, id) {
			findings = append(findings, Finding{
				Rule:     r.ID(),
				Scope:    id,
				Severity: SeverityError,
				Message:  "bucket has no policy denying insecure transport",
			})
		}
	}
	return findings
}

// DynamoPointInTimeRecovery flags tables without continuous backups.
type DynamoPointInTimeRecovery struct{}

func (DynamoPointInTimeRecovery) ID() string { return "WS005" }
func (DynamoPointInTimeRecovery) Description() string {
	return "DynamoDB table does not enable point-in-time recovery"
}

func (r DynamoPointInTimeRecovery) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::DynamoDB::Table" {
			continue
		}
		pitr, _ := res.Properties["PointInTimeRecoverySpecification"].(map[string]any)
		if !boolProp(pitr, "PointInTimeRecoveryEnabled") {
			findings = append(findings, Finding{
				Rule:     r.ID(),
				Scope:    id,
				Severity: SeverityError,
				Message:  "table must enable point-in-time recovery",
			})
		}
	}
	return findings
}

// ApiAccessLogging flags API stages without access logging.
type ApiAccessLogging struct{}

func (ApiAccessLogging) ID() string { return "WS006" }
func (ApiAccessLogging) Description() string {
	return "API Gateway stage does not log access"
}

func (r ApiAccessLogging) Check(t *wirestack.Template) []Finding {
	var findings []Finding
	for _, id := range sortedResourceIDs(t) {
		res := t.Resources[id]
		if res.Type != "AWS::ApiGateway::Stage" {
			continue
		}
		if _, ok := res.Properties["AccessLogSetting"].(map[string]any); !ok {
			findings = append(findings, Finding{
				Rule:     r.ID(),
				Scope:    id,
				Severity: SeverityWarning,
				Message:  "stage has no access log destination",
			})
		}
	}
	return findings
}

// hasWildcard reports whether an Action/Resource value (string or list)
// contains a wildcard entry.
func hasWildcard(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.Contains(val, "*")
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok && strings.Contains(s, "*") {
				return true
			}
		}
	}
	return false
}

// hasSecureTransportPolicy looks for a bucket policy on bucketID with a Deny
// statement conditioned on aws:SecureTransport.
func hasSecureTransportPolicy(t *wirestack.Template, bucketID string) bool {
	for _, res := range t.Resources {
		if res.Type != "AWS::S3::BucketPolicy" {
			continue
		}
		bucketRef, _ := res.Properties["Bucket"].(map[string]any)
		if name, _ := bucketRef["Ref"].(string); name != bucketID {
			continue
		}
		doc, _ := res.Properties["PolicyDocument"].(map[string]any)
		statements, _ := doc["Statement"].([]any)
		for _, s := range statements {
			stmt, _ := s.(map[string]any)
			if effect, _ := stmt["Effect"].(string); effect != "Deny" {
				continue
			}
			cond, _ := stmt["Condition"].(map[string]any)
			boolCond, _ := cond["Bool"].(map[string]any)
			if _, ok := boolCond["aws:SecureTransport"]; ok {
				return true
			}
		}
	}
	return false
}

// boolProp tolerates both bool values (from the builder) and string "true"
// (from hand-written templates).
func boolProp(m map[string]any, key string) bool {
	if m == nil {
		return false
	}
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}
