// cmd/dirlens/config.go
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the user-tunable settings. Pointer fields distinguish
// "not set in the file" from an explicit zero value.
type Config struct {
	OllamaURL          *string  `toml:"ollama_url"`
	TagsURL            *string  `toml:"tags_url"`
	DefaultModel       *string  `toml:"default_model"`
	MaxTokens          *int     `toml:"max_tokens"`
	IncludeFullContent *bool    `toml:"include_full_content"`
	OutputFormat       *string  `toml:"output_format"`
	TextExtensions     []string `toml:"text_extensions"`
	BundleExtensions   []string `toml:"bundle_extensions"`
	UseGitignore       *bool    `toml:"use_gitignore"`
}

var defaultConfig = Config{
	OllamaURL:          func(s string) *string { return &s }(defaultOllamaURL),
	TagsURL:            func(s string) *string { return &s }(defaultTagsURL),
	DefaultModel:       func(s string) *string { return &s }(""),
	MaxTokens:          func(i int) *int { return &i }(defaultMaxTokens),
	IncludeFullContent: func(b bool) *bool { return &b }(false),
	OutputFormat:       func(s string) *string { return &s }("json"),
	TextExtensions:     nil, // classifier falls back to its builtin allow-list
	BundleExtensions:   []string{"py", "json", "sh", "txt", "rst", "md", "go", "mod", "sum", "yaml", "yml"},
	UseGitignore:       func(b bool) *bool { return &b }(true),
}

// loadConfig finds and loads the configuration. With an empty
// customConfigPath the default location ~/.config/dirlens/config.toml is
// tried; a missing default file is not an error, a missing custom file is.
func loadConfig(customConfigPath string) (Config, error) {
	cfg := defaultConfig
	configFile := ""
	isCustomPath := customConfigPath != ""

	if isCustomPath {
		abs, err := filepath.Abs(customConfigPath)
		if err != nil {
			slog.Error("Could not determine absolute path for custom config file.", "path", customConfigPath, "error", err)
			return defaultConfig, fmt.Errorf("invalid custom config path '%s': %w", customConfigPath, err)
		}
		configFile = abs
		slog.Debug("Attempting to load configuration from custom path.", "path", configFile)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("Could not determine user home directory. Using default settings only.", "error", err)
			return cfg, nil
		}
		configFile = filepath.Join(homeDir, ".config", "dirlens", "config.toml")
		slog.Debug("Attempting to load configuration from default path.", "path", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if isCustomPath {
				slog.Error("Specified configuration file not found.", "path", configFile)
				return defaultConfig, fmt.Errorf("specified configuration file '%s' not found", configFile)
			}
			slog.Info("No default config file found, using default settings.", "path", configFile)
			return cfg, nil
		}
		slog.Error("Error reading config file.", "path", configFile, "error", err)
		return defaultConfig, fmt.Errorf("error reading config file '%s': %w", configFile, err)
	}

	if len(content) == 0 {
		slog.Info("Configuration file is empty, using default settings.", "path", configFile)
		return cfg, nil
	}

	slog.Info("Loading configuration.", "path", configFile)
	loadedCfg := defaultConfig
	if meta, err := toml.Decode(string(content), &loadedCfg); err != nil {
		slog.Error("Error decoding TOML config file, using default settings.", "path", configFile, "error", err)
		return defaultConfig, fmt.Errorf("error decoding TOML from '%s': %w", configFile, err)
	} else if len(meta.Undecoded()) > 0 {
		slog.Warn("Unrecognized keys found in config file.", "path", configFile, "keys", meta.Undecoded())
	}

	cfg = loadedCfg

	// Ensure pointer fields have defaults if nil after decoding
	if cfg.OllamaURL == nil {
		cfg.OllamaURL = defaultConfig.OllamaURL
	}
	if cfg.TagsURL == nil {
		cfg.TagsURL = defaultConfig.TagsURL
	}
	if cfg.DefaultModel == nil {
		cfg.DefaultModel = defaultConfig.DefaultModel
	}
	if cfg.MaxTokens == nil {
		cfg.MaxTokens = defaultConfig.MaxTokens
	}
	if cfg.IncludeFullContent == nil {
		cfg.IncludeFullContent = defaultConfig.IncludeFullContent
	}
	if cfg.OutputFormat == nil {
		cfg.OutputFormat = defaultConfig.OutputFormat
	}
	if cfg.BundleExtensions == nil {
		cfg.BundleExtensions = defaultConfig.BundleExtensions
	}
	if cfg.UseGitignore == nil {
		cfg.UseGitignore = defaultConfig.UseGitignore
	}

	slog.Debug("Configuration loaded successfully.",
		"source", configFile,
		"ollama_url", *cfg.OllamaURL,
		"tags_url", *cfg.TagsURL,
		"default_model", *cfg.DefaultModel,
		"max_tokens", *cfg.MaxTokens,
		"include_full_content", *cfg.IncludeFullContent,
		"output_format", *cfg.OutputFormat,
		"use_gitignore", *cfg.UseGitignore,
	)

	return cfg, nil
}
