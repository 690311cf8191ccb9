// cmd/dirlens/config_test.go
package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_CustomPath(t *testing.T) {
	path := writeConfigFile(t, `
ollama_url = "http://ai.local:11434/api/generate"
default_model = "llama3:8b"
max_tokens = 4096
include_full_content = true
output_format = "jsonl"
text_extensions = ["txt", "cfg"]
use_gitignore = false
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "http://ai.local:11434/api/generate", *cfg.OllamaURL)
	assert.Equal(t, "llama3:8b", *cfg.DefaultModel)
	assert.Equal(t, 4096, *cfg.MaxTokens)
	assert.True(t, *cfg.IncludeFullContent)
	assert.Equal(t, "jsonl", *cfg.OutputFormat)
	assert.Equal(t, []string{"txt", "cfg"}, cfg.TextExtensions)
	assert.False(t, *cfg.UseGitignore)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, defaultTagsURL, *cfg.TagsURL)
	assert.Equal(t, defaultConfig.BundleExtensions, cfg.BundleExtensions)
}

func TestLoadConfig_MissingCustomPathFails(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	path := writeConfigFile(t, "")
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultOllamaURL, *cfg.OllamaURL)
	assert.Equal(t, defaultMaxTokens, *cfg.MaxTokens)
	assert.False(t, *cfg.IncludeFullContent)
	assert.Equal(t, "json", *cfg.OutputFormat)
}

func TestLoadConfig_InvalidTOMLFails(t *testing.T) {
	path := writeConfigFile(t, "ollama_url = [broken")
	cfg, err := loadConfig(path)
	assert.Error(t, err)
	// The caller still gets usable defaults.
	assert.Equal(t, defaultOllamaURL, *cfg.OllamaURL)
}

func TestLoadConfig_UnknownKeysTolerated(t *testing.T) {
	path := writeConfigFile(t, `
default_model = "qwen2:7b"
shiny_new_knob = 42
`)
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "qwen2:7b", *cfg.DefaultModel)
}
