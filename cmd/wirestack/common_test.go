package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wirestack/wirestack/internal/config"
)

func TestResolveConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wirestack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: dev\nlogLevel: info\n"), 0o644))

	cfg, err := resolveConfig(configOpts{
		configFile:  path,
		environment: "test",
		logLevel:    "debug",
	})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestResolveConfig_Defaults(t *testing.T) {
	cfg, err := resolveConfig(configOpts{configFile: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err, "explicit config file must exist")

	cfg, err = resolveConfig(configOpts{environment: "test"})
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestResolveConfig_RejectsBadOverride(t *testing.T) {
	_, err := resolveConfig(configOpts{environment: "Not Valid"})
	assert.Error(t, err)
}

func TestSynthesize_Pipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "test"

	s, tmpl, err := synthesize(cfg)
	require.NoError(t, err)
	assert.Equal(t, "test-serverless-app", s.StackName())
	assert.NotEmpty(t, tmpl.Resources)
}

func TestRenderTemplate(t *testing.T) {
	cfg := config.Default()
	cfg.Environment = "test"
	_, tmpl, err := synthesize(cfg)
	require.NoError(t, err)

	jsonData, err := renderTemplate(tmpl, "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(jsonData), "{"))
	assert.True(t, strings.HasSuffix(string(jsonData), "\n"))

	yamlData, err := renderTemplate(tmpl, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(yamlData), "AWSTemplateFormatVersion:")

	_, err = renderTemplate(tmpl, "toml")
	assert.Error(t, err)
}

func TestWatchDir(t *testing.T) {
	dir, err := watchDir("")
	require.NoError(t, err)
	cwd, _ := os.Getwd()
	assert.Equal(t, cwd, dir)

	dir, err = watchDir("/tmp/configs/prod.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/configs", dir)
}

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, getVersion())
}
