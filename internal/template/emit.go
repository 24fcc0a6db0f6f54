package template

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	wirestack "github.com/wirestack/wirestack"
)

// ToJSON renders a template as indented JSON. Map keys serialize in sorted
// order, so output is deterministic.
func ToJSON(t *wirestack.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML renders a template as YAML. The template is round-tripped through
// JSON first so custom marshalers (handles, intrinsics) keep their
// CloudFormation encoding.
func ToYAML(t *wirestack.Template) ([]byte, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}

	return yaml.Marshal(generic)
}
