package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte("environment: test\nlogLevel: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "test-serverless-artifacts", cfg.ResolvedArtifactBucket())
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("environment: staging\n"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
}

func TestParse_StackName(t *testing.T) {
	cfg, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)
	assert.Equal(t, "test-serverless-app", cfg.ResolvedStackName())

	cfg, err = Parse([]byte("environment: test\nstackName: legacy-app\n"))
	require.NoError(t, err)
	assert.Equal(t, "legacy-app", cfg.ResolvedStackName())
}

func TestParse_ExtraTags(t *testing.T) {
	cfg, err := Parse([]byte("environment: dev\nextraTags:\n  team: platform\n"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"team": "platform"}, cfg.ExtraTags)
}

func TestParse_RejectsBadEnvironment(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"uppercase", "environment: Prod\n"},
		{"leading digit", "environment: 1dev\n"},
		{"underscore", "environment: dev_1\n"},
		{"empty", "environment: \"\"\n"},
		{"too long", "environment: abcdefghijklmnopqrstu\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParse_RejectsBadLogLevel(t *testing.T) {
	_, err := Parse([]byte("environment: dev\nlogLevel: verbose\n"))
	require.Error(t, err)
}

func TestParse_RejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("environment: dev\nregion: us-east-1\n"))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wirestack.yaml")
	require.NoError(t, os.WriteFile(path, []byte("environment: test\nartifactBucket: shared-artifacts\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "shared-artifacts", cfg.ResolvedArtifactBucket())
}

func TestValidate_FlagsOverride(t *testing.T) {
	cfg := Default()
	cfg.Environment = "Bad Env"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.LogLevel = "chatty"
	assert.Error(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		level, err := ParseLevel(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, level)
	}

	_, err := ParseLevel("trace")
	assert.Error(t, err)
}
