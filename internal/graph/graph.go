// Package graph renders DOT and Mermaid dependency graphs from a
// synthesized template.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wirestack "github.com/wirestack/wirestack"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from a template.
type Generator struct {
	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByService groups resources by AWS service.
	ClusterByService bool
}

// Generate renders the dependency graph of a template to w.
func (g *Generator) Generate(t *wirestack.Template, w io.Writer) error {
	graph := g.buildGraph(t)

	format := g.Format
	if format == "" {
		format = FormatDOT
	}

	var output string
	if format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := w.Write([]byte(output))
	return err
}

// GenerateString is a convenience method that returns the graph as a string.
func (g *Generator) GenerateString(t *wirestack.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(t, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(t *wirestack.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})

	ids := make([]string, 0, len(t.Resources))
	for id := range t.Resources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if g.ClusterByService {
		g.addClusteredNodes(graph, t, ids)
	} else {
		for _, id := range ids {
			graph.Node(id).Label(id + "\\n[" + t.Resources[id].Type + "]")
		}
	}

	for _, id := range ids {
		res := t.Resources[id]
		for _, dep := range dependencies(t, id, res) {
			from := graph.Node(id)
			to := graph.Node(dep)
			graph.Edge(from, to)
		}
	}

	return graph
}

// addClusteredNodes groups resources by AWS service (the middle token of the
// CloudFormation type).
func (g *Generator) addClusteredNodes(graph *dot.Graph, t *wirestack.Template, ids []string) {
	services := make(map[string][]string)
	for _, id := range ids {
		services[serviceOf(t.Resources[id].Type)] = append(services[serviceOf(t.Resources[id].Type)], id)
	}

	names := make([]string, 0, len(services))
	for service := range services {
		names = append(names, service)
	}
	sort.Strings(names)

	for _, service := range names {
		members := services[service]
		if len(members) > 1 {
			cluster := graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			cluster.Attr("label", service)
			cluster.Attr("style", "rounded")
			for _, id := range members {
				cluster.Node(id).Label(id + "\\n[" + t.Resources[id].Type + "]")
			}
		} else {
			for _, id := range members {
				graph.Node(id).Label(id + "\\n[" + t.Resources[id].Type + "]")
			}
		}
	}
}

// dependencies returns the logical IDs a resource references, explicit
// DependsOn included, sorted and de-duplicated.
func dependencies(t *wirestack.Template, id string, res wirestack.ResourceDef) []string {
	seen := make(map[string]bool)
	walkRefs(res.Properties, seen)
	for _, dep := range res.DependsOn {
		seen[dep] = true
	}

	var deps []string
	for dep := range seen {
		if dep == id {
			continue
		}
		if _, exists := t.Resources[dep]; exists {
			deps = append(deps, dep)
		}
	}
	sort.Strings(deps)
	return deps
}

func walkRefs(v any, seen map[string]bool) {
	switch val := v.(type) {
	case map[string]any:
		if ref, ok := val["Ref"].(string); ok && len(val) == 1 {
			seen[ref] = true
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

func serviceOf(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}
