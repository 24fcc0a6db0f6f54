// Package baseline evaluates a security ruleset over a synthesized template.
//
// Findings are identified by rule ID and scope (a logical resource ID).
// A stack pre-declares exceptions for findings it accepts; every exception
// carries a justification. Unsuppressed error-severity findings fail
// synthesis. An exception that references an unknown rule or a resource
// that does not exist in the template is itself a configuration error.
package baseline

import (
	"fmt"
	"sort"

	wirestack "github.com/wirestack/wirestack"
)

// Severity of a finding.
type Severity string

const (
	// SeverityError findings fail synthesis unless suppressed.
	SeverityError Severity = "error"
	// SeverityWarning findings are reported but do not fail synthesis.
	SeverityWarning Severity = "warning"
)

// ScopeStack marks an exception that applies to every resource in the stack.
const ScopeStack = "*"

// Finding is a single rule violation.
type Finding struct {
	Rule     string   `json:"rule"`
	Scope    string   `json:"scope"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s [%s] %s: %s", f.Rule, f.Severity, f.Scope, f.Message)
}

// Exception is a pre-declared, justified suppression of a finding.
type Exception struct {
	RuleID        string `json:"rule" yaml:"rule"`
	Scope         string `json:"scope" yaml:"scope"`
	Justification string `json:"justification" yaml:"justification"`
}

// SuppressedFinding pairs a finding with the exception that accepted it.
type SuppressedFinding struct {
	Finding
	Justification string `json:"justification"`
}

// Rule checks one property of the template.
type Rule interface {
	ID() string
	Description() string
	Check(t *wirestack.Template) []Finding
}

// Report is the outcome of evaluating the ruleset.
type Report struct {
	Findings   []Finding
	Suppressed []SuppressedFinding
}

// Failed reports whether any unsuppressed error-severity finding remains.
func (r *Report) Failed() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Rules returns the baseline ruleset.
func Rules() []Rule {
	return []Rule{
		IamManagedPolicy{},
		IamWildcard{},
		S3PublicAccess{},
		S3InsecureTransport{},
		DynamoPointInTimeRecovery{},
		ApiAccessLogging{},
	}
}

// Evaluate runs the ruleset over a template and applies the exception list.
// It fails if an exception references an unknown rule, a scope missing from
// the template, or carries no justification.
func Evaluate(t *wirestack.Template, exceptions []Exception) (*Report, error) {
	rules := Rules()

	known := make(map[string]bool, len(rules))
	for _, rule := range rules {
		known[rule.ID()] = true
	}

	for _, ex := range exceptions {
		if !known[ex.RuleID] {
			return nil, fmt.Errorf("exception references unknown rule %q", ex.RuleID)
		}
		if ex.Justification == "" {
			return nil, fmt.Errorf("exception for rule %s has no justification", ex.RuleID)
		}
		if ex.Scope == ScopeStack {
			continue
		}
		if _, ok := t.Resources[ex.Scope]; !ok {
			return nil, fmt.Errorf("exception for rule %s references unknown resource %q", ex.RuleID, ex.Scope)
		}
	}

	report := &Report{}
	for _, rule := range rules {
		for _, finding := range rule.Check(t) {
			if ex, ok := matchException(finding, exceptions); ok {
				report.Suppressed = append(report.Suppressed, SuppressedFinding{
					Finding:       finding,
					Justification: ex.Justification,
				})
				continue
			}
			report.Findings = append(report.Findings, finding)
		}
	}

	sortFindings(report.Findings)
	sort.Slice(report.Suppressed, func(i, j int) bool {
		if report.Suppressed[i].Rule != report.Suppressed[j].Rule {
			return report.Suppressed[i].Rule < report.Suppressed[j].Rule
		}
		return report.Suppressed[i].Scope < report.Suppressed[j].Scope
	})

	return report, nil
}

func matchException(f Finding, exceptions []Exception) (Exception, bool) {
	for _, ex := range exceptions {
		if ex.RuleID != f.Rule {
			continue
		}
		if ex.Scope == ScopeStack || ex.Scope == f.Scope {
			return ex, true
		}
	}
	return Exception{}, false
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Rule != findings[j].Rule {
			return findings[i].Rule < findings[j].Rule
		}
		return findings[i].Scope < findings[j].Scope
	})
}

// sortedResourceIDs returns the template's logical IDs in stable order so
// rule output is deterministic.
func sortedResourceIDs(t *wirestack.Template) []string {
	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
