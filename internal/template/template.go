// Package template builds CloudFormation templates from registered resources.
//
// Components register typed resources under logical IDs and receive handles
// back. Build serializes every resource, verifies that all references
// resolve, and rejects dependency cycles. Output is deterministic: the same
// registrations always produce byte-identical JSON.
package template

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	wirestack "github.com/wirestack/wirestack"
	"github.com/wirestack/wirestack/internal/serialize"
)

var logicalIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

type entry struct {
	resource       wirestack.Resource
	deletionPolicy string
	dependsOn      []string
}

// Builder accumulates resources, parameters, and outputs for one synthesis
// pass.
type Builder struct {
	description string
	resources   map[string]*entry
	parameters  map[string]wirestack.Parameter
	outputs     map[string]wirestack.Output
	errs        []error
}

// NewBuilder creates an empty builder.
func NewBuilder(description string) *Builder {
	return &Builder{
		description: description,
		resources:   make(map[string]*entry),
		parameters:  make(map[string]wirestack.Parameter),
		outputs:     make(map[string]wirestack.Output),
	}
}

// Add registers a resource under a logical ID and returns its handle.
// Registration problems (duplicate or malformed IDs) are reported by Build.
func (b *Builder) Add(logicalID string, res wirestack.Resource) wirestack.Handle {
	if !logicalIDPattern.MatchString(logicalID) {
		b.errs = append(b.errs, fmt.Errorf("invalid logical ID %q: must be alphanumeric", logicalID))
		return wirestack.Handle{LogicalID: logicalID}
	}
	if _, exists := b.resources[logicalID]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate logical ID %q", logicalID))
		return wirestack.Handle{LogicalID: logicalID}
	}
	b.resources[logicalID] = &entry{resource: res}
	return wirestack.Handle{LogicalID: logicalID}
}

// SetDeletionPolicy sets the DeletionPolicy attribute of a registered
// resource (e.g., "Delete", "Retain").
func (b *Builder) SetDeletionPolicy(logicalID, policy string) {
	e, ok := b.resources[logicalID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("deletion policy for unknown resource %q", logicalID))
		return
	}
	e.deletionPolicy = policy
}

// AddDependency records an explicit DependsOn edge for orderings the
// provisioning engine cannot infer from references (e.g., a bucket
// notification that requires an invoke permission to exist first).
func (b *Builder) AddDependency(logicalID, dependsOn string) {
	e, ok := b.resources[logicalID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("dependency for unknown resource %q", logicalID))
		return
	}
	e.dependsOn = append(e.dependsOn, dependsOn)
}

// AddParameter registers a template parameter.
func (b *Builder) AddParameter(name string, param wirestack.Parameter) {
	if _, exists := b.parameters[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate parameter %q", name))
		return
	}
	b.parameters[name] = param
}

// AddOutput registers a template output.
func (b *Builder) AddOutput(name string, output wirestack.Output) {
	if _, exists := b.outputs[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate output %q", name))
		return
	}
	b.outputs[name] = output
}

// Resource returns the registered resource for a logical ID, if any.
func (b *Builder) Resource(logicalID string) (wirestack.Resource, bool) {
	e, ok := b.resources[logicalID]
	if !ok {
		return nil, false
	}
	return e.resource, true
}

// LogicalIDs returns all registered logical IDs in sorted order.
func (b *Builder) LogicalIDs() []string {
	ids := make([]string, 0, len(b.resources))
	for id := range b.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Build serializes the registered resources into a template.
// It fails on registration errors, unresolved references, and cycles —
// before any template is produced.
func (b *Builder) Build() (*wirestack.Template, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	// Serialize everything first so reference errors surface before any
	// partial template exists.
	props := make(map[string]map[string]any, len(b.resources))
	refs := make(map[string][]string, len(b.resources))
	for id, e := range b.resources {
		p, err := serialize.Properties(e.resource)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", id, err)
		}
		props[id] = p
		refs[id] = append(collectRefs(p), e.dependsOn...)
	}

	for id, targets := range refs {
		for _, target := range targets {
			if _, ok := b.resources[target]; ok {
				continue
			}
			if _, ok := b.parameters[target]; ok {
				continue
			}
			return nil, fmt.Errorf("%s references unknown resource %q", id, target)
		}
	}

	if _, err := b.topologicalSort(refs); err != nil {
		return nil, err
	}

	tmpl := &wirestack.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              b.description,
		Resources:                make(map[string]wirestack.ResourceDef, len(b.resources)),
	}

	for id, e := range b.resources {
		dependsOn := append([]string(nil), e.dependsOn...)
		sort.Strings(dependsOn)
		tmpl.Resources[id] = wirestack.ResourceDef{
			Type:           e.resource.ResourceType(),
			Properties:     props[id],
			DependsOn:      dependsOn,
			DeletionPolicy: e.deletionPolicy,
		}
	}

	if len(b.parameters) > 0 {
		tmpl.Parameters = make(map[string]wirestack.Parameter, len(b.parameters))
		for name, p := range b.parameters {
			tmpl.Parameters[name] = p
		}
	}

	if len(b.outputs) > 0 {
		tmpl.Outputs = make(map[string]wirestack.Output, len(b.outputs))
		for name, o := range b.outputs {
			tmpl.Outputs[name] = o
		}
	}

	return tmpl, nil
}

// topologicalSort orders resources dependency-first using Kahn's algorithm
// with sorted queues, so the order is deterministic. It reports cycles.
func (b *Builder) topologicalSort(refs map[string][]string) ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for id := range b.resources {
		graph[id] = nil
		inDegree[id] = 0
	}

	for id, targets := range refs {
		for _, dep := range targets {
			if _, exists := b.resources[dep]; exists {
				graph[dep] = append(graph[dep], id)
				inDegree[id]++
			}
		}
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(b.resources) {
		return nil, b.describeCycle(refs)
	}

	return result, nil
}

// describeCycle reports one dependency cycle for the error message.
func (b *Builder) describeCycle(refs map[string][]string) error {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)

	var cycle []string
	var walk func(node string) bool
	walk = func(node string) bool {
		visited[node] = true
		onPath[node] = true

		for _, dep := range refs[node] {
			if _, exists := b.resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if walk(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if onPath[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		onPath[node] = false
		return false
	}

	ids := make([]string, 0, len(b.resources))
	for id := range b.resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !visited[id] {
			if walk(id) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected: "
		for i, id := range cycle {
			if i > 0 {
				msg += " → "
			}
			msg += id
		}
		return errors.New(msg)
	}
	return errors.New("circular dependency detected")
}

// collectRefs walks serialized properties and gathers referenced logical IDs
// from Ref and Fn::GetAtt values. Pseudo-parameters are skipped.
func collectRefs(v any) []string {
	seen := make(map[string]bool)
	walkRefs(v, seen)

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walkRefs(v any, seen map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["Ref"].(string); ok && len(val) == 1 {
			if !isPseudoParameter(ref) {
				seen[ref] = true
			}
			return
		}
		if getAtt, ok := val["Fn::GetAtt"].([]any); ok && len(val) == 1 && len(getAtt) == 2 {
			if name, ok := getAtt[0].(string); ok {
				seen[name] = true
			}
			return
		}
		for _, nested := range val {
			walkRefs(nested, seen)
		}
	case []any:
		for _, item := range val {
			walkRefs(item, seen)
		}
	}
}

func isPseudoParameter(name string) bool {
	return len(name) > 5 && name[:5] == "AWS::"
}
