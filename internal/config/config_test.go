package config

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-nyaya/internal/log"
	"github.com/teslashibe/go-nyaya/pkg/inference"
)

// clearEnv isolates a test from credentials in the developer's shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"NYAYA_API_KEY", "GEMINI_API_KEY", "API_KEY",
		"NYAYA_PORT", "NYAYA_MODEL", "NYAYA_FALLBACK_MODEL", "NYAYA_LOG_LEVEL", "NYAYA_TIMEOUT", "NYAYA_DEBUG",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, inference.DefaultModel, cfg.Model)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.CopyAck)
	assert.Empty(t, cfg.APIKey)
	assert.ErrorIs(t, cfg.RequireAPIKey(), inference.ErrNoAPIKey)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoadEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("NYAYA_PORT", "9090")
	t.Setenv("NYAYA_LOG_LEVEL", "debug")
	t.Setenv("NYAYA_TIMEOUT", "15s")
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "legacy-key", cfg.APIKey)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestAPIKeyPrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.APIKey)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nyaya.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\nmodel: gemini-2.5-pro\ndebug: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.True(t, cfg.Debug)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nyaya.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7070\n"), 0o644))
	t.Setenv("NYAYA_PORT", "6060")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 6060, cfg.Port)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8080, Model: "m", LogLevel: "info", Timeout: time.Second}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port zero", func(c *Config) { c.Port = 0 }},
		{"port too large", func(c *Config) { c.Port = 70000 }},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }},
		{"no timeout", func(c *Config) { c.Timeout = 0 }},
		{"no model", func(c *Config) { c.Model = "" }},
		{"fallback same as model", func(c *Config) { c.FallbackModel = "m" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestInferenceOptions(t *testing.T) {
	c := Config{APIKey: "k", Model: "m", Timeout: 5 * time.Second, BaseURL: "http://localhost:1"}
	ic := inference.DefaultConfig()
	ic.Apply(c.InferenceOptions()...)

	assert.Equal(t, "k", ic.APIKey)
	assert.Equal(t, "m", ic.Model)
	assert.Equal(t, 5*time.Second, ic.Timeout)
	assert.Equal(t, "http://localhost:1", ic.BaseURL)
}

func TestLoadFallbackModel(t *testing.T) {
	clearEnv(t)
	t.Setenv("NYAYA_FALLBACK_MODEL", "gemini-2.5-flash-lite")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash-lite", cfg.FallbackModel)
}

func TestNewProvider(t *testing.T) {
	logger := log.New(io.Discard, "error")
	c := Config{Model: inference.DefaultModel, Timeout: time.Second}

	_, err := c.NewProvider(logger)
	assert.ErrorIs(t, err, inference.ErrNoAPIKey)

	c.APIKey = "k"
	p, err := c.NewProvider(logger)
	require.NoError(t, err)
	assert.IsType(t, &inference.Gemini{}, p)
	p.Close()

	c.FallbackModel = "gemini-2.5-flash-lite"
	p, err = c.NewProvider(logger)
	require.NoError(t, err)
	defer p.Close()
	chain, ok := p.(*inference.Chain)
	require.True(t, ok, "expected a chain, got %T", p)
	assert.Equal(t, 2, chain.Len())
}

func TestNewProviderFallsBackWhenOverloaded(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:") {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error": {"code": 503, "message": "The model is overloaded.", "status": "UNAVAILABLE"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "## Bail"}}},
				"finishReason": "STOP",
			}},
		})
	}))
	defer server.Close()

	c := Config{
		APIKey:        "k",
		Model:         "gemini-2.5-flash",
		FallbackModel: "gemini-2.5-flash-lite",
		BaseURL:       server.URL,
		Timeout:       5 * time.Second,
	}
	p, err := c.NewProvider(log.New(io.Discard, "error"))
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Generate(context.Background(), &inference.GenerateRequest{Prompt: "bail", Model: c.Model})
	require.NoError(t, err)
	assert.Equal(t, "## Bail", resp.Text)
	assert.Equal(t, "gemini-2.5-flash-lite", resp.Model)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, paths)
	assert.Contains(t, paths[len(paths)-1], "/models/gemini-2.5-flash-lite:generateContent")
}
