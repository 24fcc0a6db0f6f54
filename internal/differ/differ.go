// Package differ provides semantic comparison of CloudFormation templates.
//
// Re-synthesizing a stack with identical inputs and diffing against the
// previous template must produce an empty diff; the deploy workflow relies
// on that to detect no-op updates.
package differ

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"

	wirestack "github.com/wirestack/wirestack"
)

// Result contains the difference between two templates.
type Result struct {
	Diff    wirestack.TemplateDiff
	Summary wirestack.DiffSummary
}

// Empty reports whether the two templates were semantically identical.
func (r *Result) Empty() bool {
	return r.Summary.Total == 0
}

// Compare compares two templates and returns their differences.
func Compare(before, after *wirestack.Template) *Result {
	result := &Result{}

	for name, def := range after.Resources {
		if _, exists := before.Resources[name]; !exists {
			result.Diff.Added = append(result.Diff.Added, wirestack.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, def := range before.Resources {
		if _, exists := after.Resources[name]; !exists {
			result.Diff.Removed = append(result.Diff.Removed, wirestack.DiffEntry{
				Resource: name,
				Type:     def.Type,
			})
		}
	}

	for name, beforeDef := range before.Resources {
		afterDef, exists := after.Resources[name]
		if !exists {
			continue
		}
		changes := compareResources(beforeDef, afterDef)
		if len(changes) > 0 {
			result.Diff.Modified = append(result.Diff.Modified, wirestack.DiffEntry{
				Resource: name,
				Type:     beforeDef.Type,
				Changes:  changes,
			})
		}
	}

	sortEntries(result.Diff.Added)
	sortEntries(result.Diff.Removed)
	sortEntries(result.Diff.Modified)

	result.Summary = wirestack.DiffSummary{
		Added:    len(result.Diff.Added),
		Removed:  len(result.Diff.Removed),
		Modified: len(result.Diff.Modified),
	}
	result.Summary.Total = result.Summary.Added + result.Summary.Removed + result.Summary.Modified

	return result
}

// CompareFiles compares two template files.
func CompareFiles(beforePath, afterPath string) (*Result, error) {
	before, err := LoadTemplate(beforePath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", beforePath, err)
	}

	after, err := LoadTemplate(afterPath)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", afterPath, err)
	}

	return Compare(before, after), nil
}

// LoadTemplate loads a template from a JSON or YAML file.
func LoadTemplate(path string) (*wirestack.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmpl wirestack.Template
	if err := json.Unmarshal(data, &tmpl); err != nil {
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return nil, fmt.Errorf("parsing %s as JSON or YAML: %w", path, err)
		}
	}

	return &tmpl, nil
}

// compareResources compares two resource definitions and returns changes.
func compareResources(before, after wirestack.ResourceDef) []string {
	var changes []string

	if before.Type != after.Type {
		changes = append(changes, fmt.Sprintf("Type changed: %s → %s", before.Type, after.Type))
	}

	if before.DeletionPolicy != after.DeletionPolicy {
		changes = append(changes, fmt.Sprintf("DeletionPolicy changed: %s → %s", before.DeletionPolicy, after.DeletionPolicy))
	}

	if !equalStringSlices(before.DependsOn, after.DependsOn) {
		changes = append(changes, "DependsOn changed")
	}

	changes = append(changes, compareProperties("", before.Properties, after.Properties)...)

	return changes
}

// compareProperties recursively compares property maps, reporting dotted
// paths for nested changes.
func compareProperties(prefix string, before, after map[string]any) []string {
	var changes []string

	keys := make(map[string]bool)
	for key := range before {
		keys[key] = true
	}
	for key := range after {
		keys[key] = true
	}

	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	for _, key := range sorted {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		beforeVal, inBefore := before[key]
		afterVal, inAfter := after[key]

		switch {
		case !inBefore:
			changes = append(changes, fmt.Sprintf("%s added", path))
		case !inAfter:
			changes = append(changes, fmt.Sprintf("%s removed", path))
		default:
			beforeMap, beforeOk := beforeVal.(map[string]any)
			afterMap, afterOk := afterVal.(map[string]any)
			if beforeOk && afterOk {
				changes = append(changes, compareProperties(path, beforeMap, afterMap)...)
			} else if !reflect.DeepEqual(normalize(beforeVal), normalize(afterVal)) {
				changes = append(changes, fmt.Sprintf("%s changed", path))
			}
		}
	}

	return changes
}

// normalize round-trips a value through JSON so numeric types compare
// consistently regardless of how the template was loaded.
func normalize(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return v
	}
	return result
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sortEntries(entries []wirestack.DiffEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Resource < entries[j].Resource
	})
}
