package stack

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/baseline"
)

// Subscription records an event source wired to a function, for
// cross-checking against the declared grants.
type Subscription struct {
	// Source is the logical ID of the emitting resource.
	Source string
	// Target is the function invoked on delivery.
	Target *Function
	// Event names the event class ("s3:ObjectCreated:*", "sns:Notification").
	Event string
	// Prefix restricts object events to a key prefix, when set.
	Prefix string
}

// Verify cross-checks the synthesized template against the stack's declared
// relations. It walks the template itself, not the structures the template
// was built from, so an emitter defect cannot hide from it:
//
//   - every function environment variable that references a stack resource
//     (by Ref, GetAtt, or its configured physical name) is backed by a
//     grant on that resource, and every grant shows up as such a reference
//     (no unused permissions, no unreachable identifiers)
//   - every event subscription targets a function holding a grant on the
//     source
//   - every declared exception references a known rule and a scope present
//     in the template
func (s *Stack) Verify(tmpl *wirestack.Template) error {
	var errs []error

	granted := make(map[string]Grant, len(s.grants))
	for _, g := range s.grants {
		granted[g.Function+"/"+g.Resource] = g
	}

	names := physicalNames(tmpl)

	witnessed := make(map[string]bool, len(granted))
	for _, id := range sortedIDs(tmpl.Resources) {
		res := tmpl.Resources[id]
		if res.Type != "AWS::Lambda::Function" {
			continue
		}
		refs := envReferences(res.Properties, names)
		for _, envVar := range sortedKeys(refs) {
			// A physical name can belong to more than one resource (a table
			// and a topic may share a name); any granted candidate counts.
			matched := false
			for _, target := range refs[envVar] {
				if _, ok := granted[id+"/"+target]; ok {
					witnessed[id+"/"+target] = true
					matched = true
				}
			}
			if !matched {
				errs = append(errs, fmt.Errorf("%s: environment variable %s references %s without a grant", id, envVar, strings.Join(refs[envVar], " or ")))
			}
		}
	}
	for _, g := range s.grants {
		if !witnessed[g.Function+"/"+g.Resource] {
			errs = append(errs, fmt.Errorf("%s: grant on %s has no environment reference", g.Function, g.Resource))
		}
	}

	for _, sub := range s.subscriptions {
		if sub.Target == nil {
			errs = append(errs, fmt.Errorf("subscription on %s has no target function", sub.Source))
			continue
		}
		g, ok := granted[sub.Target.Handle.LogicalID+"/"+sub.Source]
		if !ok {
			errs = append(errs, fmt.Errorf("%s: subscribed to %s without a grant", sub.Target.Handle.LogicalID, sub.Source))
			continue
		}
		if sub.Event == "sns:Notification" && !g.Has(CapabilityConsume) {
			errs = append(errs, fmt.Errorf("%s: subscribed to %s without the consume capability", sub.Target.Handle.LogicalID, sub.Source))
		}
		if sub.Event != "sns:Notification" && !g.Has(CapabilityRead) {
			errs = append(errs, fmt.Errorf("%s: handles %s events from %s without the read capability", sub.Target.Handle.LogicalID, sub.Event, sub.Source))
		}
	}

	knownRules := make(map[string]bool)
	for _, rule := range baseline.Rules() {
		knownRules[rule.ID()] = true
	}
	for _, ex := range s.exceptions {
		if !knownRules[ex.RuleID] {
			errs = append(errs, fmt.Errorf("exception references unknown rule %q", ex.RuleID))
		}
		if ex.Scope == baseline.ScopeStack {
			continue
		}
		if _, ok := tmpl.Resources[ex.Scope]; !ok {
			errs = append(errs, fmt.Errorf("exception for rule %s references unknown resource %q", ex.RuleID, ex.Scope))
		}
	}

	return errors.Join(errs...)
}

// envReferences extracts the environment variables of a serialized function
// that reference another template resource, keyed by variable name. A value
// references a resource through Ref or Fn::GetAtt, or by carrying its
// configured physical name. Plain literals like ENVIRONMENT match nothing
// and are skipped.
func envReferences(props map[string]any, names map[string][]string) map[string][]string {
	refs := make(map[string][]string)
	env, _ := props["Environment"].(map[string]any)
	vars, _ := env["Variables"].(map[string]any)
	for name, value := range vars {
		if target, ok := referencedID(value); ok {
			refs[name] = []string{target}
			continue
		}
		if literal, ok := value.(string); ok {
			if targets, ok := names[literal]; ok {
				refs[name] = targets
			}
		}
	}
	return refs
}

// physicalNames indexes the template's configured resource names by value.
func physicalNames(tmpl *wirestack.Template) map[string][]string {
	nameKeys := []string{"BucketName", "TableName", "TopicName", "FunctionName", "LogGroupName"}
	names := make(map[string][]string)
	for _, id := range sortedIDs(tmpl.Resources) {
		for _, key := range nameKeys {
			if name, ok := tmpl.Resources[id].Properties[key].(string); ok && name != "" {
				names[name] = append(names[name], id)
			}
		}
	}
	return names
}

// referencedID resolves a serialized Ref or Fn::GetAtt value to the logical
// ID it points at.
func referencedID(value any) (string, bool) {
	m, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	if ref, ok := m["Ref"].(string); ok && len(m) == 1 {
		return ref, true
	}
	if getAtt, ok := m["Fn::GetAtt"].([]any); ok && len(m) == 1 && len(getAtt) == 2 {
		if id, ok := getAtt[0].(string); ok {
			return id, true
		}
	}
	return "", false
}

func sortedIDs(resources map[string]wirestack.ResourceDef) []string {
	ids := make([]string, 0, len(resources))
	for id := range resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
