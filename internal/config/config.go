// Package config loads and validates synthesis configuration.
//
// Configuration comes from an optional YAML file plus command-line flags;
// flags win. The file is validated against an embedded JSON Schema before
// decoding, so a malformed environment or log level fails before any
// resource is described.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON string

var environmentPattern = regexp.MustCompile(`^[a-z][a-z0-9-]{0,19}$`)

// Config parameterizes one synthesis pass.
type Config struct {
	// Environment namespaces every resource identity (e.g., "dev", "test").
	Environment string `yaml:"environment" json:"environment"`
	// LogLevel is passed to every function as LOG_LEVEL.
	LogLevel string `yaml:"logLevel" json:"logLevel"`
	// StackName overrides the deployed stack name. Defaults to
	// "<environment>-serverless-app".
	StackName string `yaml:"stackName" json:"stackName,omitempty"`
	// ArtifactBucket holds the function and layer deployment artifacts.
	// Defaults to "<environment>-serverless-artifacts".
	ArtifactBucket string `yaml:"artifactBucket" json:"artifactBucket,omitempty"`
	// ExtraTags are applied to every resource in addition to the standard
	// project/environment/managed-by tags.
	ExtraTags map[string]string `yaml:"extraTags" json:"extraTags,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Environment: "dev",
		LogLevel:    "info",
	}
}

// Load reads and validates a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

// Parse validates YAML config bytes against the embedded schema and decodes
// them.
func Parse(data []byte) (Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	schema, err := jsonschema.CompileString("wirestack-config.json", schemaJSON)
	if err != nil {
		return Config{}, fmt.Errorf("compiling config schema: %w", err)
	}

	// yaml.v3 produces map[string]any for mappings, which the validator
	// accepts after a JSON round trip normalizes scalar types.
	normalized, err := normalizeForSchema(raw)
	if err != nil {
		return Config{}, err
	}
	if err := schema.Validate(normalized); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields that flags can override after loading.
func (c Config) Validate() error {
	if !environmentPattern.MatchString(c.Environment) {
		return fmt.Errorf("invalid environment %q: must match %s", c.Environment, environmentPattern)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ResolvedStackName returns the stack name, defaulted from the environment
// when unset.
func (c Config) ResolvedStackName() string {
	if c.StackName != "" {
		return c.StackName
	}
	return c.Environment + "-serverless-app"
}

// ResolvedArtifactBucket returns the artifact bucket, defaulted from the
// environment when unset.
func (c Config) ResolvedArtifactBucket() string {
	if c.ArtifactBucket != "" {
		return c.ArtifactBucket
	}
	return c.Environment + "-serverless-artifacts"
}

// ParseLevel converts a config log level to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be debug, info, warn, or error", level)
	}
}

func normalizeForSchema(v any) (any, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("normalizing config: %w", err)
	}
	var result any
	if err := json.NewDecoder(&buf).Decode(&result); err != nil {
		return nil, fmt.Errorf("normalizing config: %w", err)
	}
	return result, nil
}
