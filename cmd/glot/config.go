package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/glot/pkg/pipeline"
)

const defaultConfigPath = ".glot/config.yaml"

// ProjectConfig holds the contents of .glot/config.yaml.
type ProjectConfig struct {
	SourceRoot        string   `yaml:"source_root,omitempty"`
	Includes          []string `yaml:"includes,omitempty"`
	Ignores           []string `yaml:"ignores,omitempty"`
	IgnoreTestFiles   bool     `yaml:"ignore_test_files,omitempty"`
	MessagesRoot      string   `yaml:"messages_root,omitempty"`
	PrimaryLocale     string   `yaml:"primary_locale,omitempty"`
	CheckedAttributes []string `yaml:"checked_attributes,omitempty"`
	IgnoreTexts       []string `yaml:"ignore_texts,omitempty"`
	Workers           int      `yaml:"workers,omitempty"`
	LogLevel          string   `yaml:"log_level,omitempty"`
	LogFormat         string   `yaml:"log_format,omitempty"`
	MCPLog            string   `yaml:"mcp_log,omitempty"`

	// dir is what relative paths in the file are resolved against.
	dir string
}

// loadProjectConfig reads the config file at path.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = projectDir(path)
	return &cfg, nil
}

// projectDir is the directory a config file describes: the parent of
// .glot/ for the standard location, else the file's own directory.
func projectDir(configPath string) string {
	dir := filepath.Dir(configPath)
	if filepath.Base(dir) == ".glot" {
		return filepath.Dir(dir)
	}
	return dir
}

// path resolves a path from the config file.
func (c *ProjectConfig) path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// defaultProjectConfig is what `glot init` writes.
func defaultProjectConfig() ProjectConfig {
	d := pipeline.DefaultConfig(".")
	return ProjectConfig{
		SourceRoot:      ".",
		Includes:        d.Includes,
		Ignores:         d.Ignores,
		IgnoreTestFiles: true,
		MessagesRoot:    "messages",
		PrimaryLocale:   d.PrimaryLocale,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// pick applies the fallback chain:
//  1. Explicit flag value (non-empty override)
//  2. Value from .glot/config.yaml
//  3. Default
func pick(flagValue, configValue, def string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return def
}

func pickList(flagValue, configValue, def []string) []string {
	if len(flagValue) > 0 {
		return flagValue
	}
	if len(configValue) > 0 {
		return configValue
	}
	return def
}

// pipelineConfig merges flags over the project config over defaults.
func (o *globalOptions) pipelineConfig(pc *ProjectConfig) pipeline.Config {
	if pc == nil {
		pc = &ProjectConfig{dir: "."}
	}
	root := pick(o.root, pc.path(pc.SourceRoot), ".")
	cfg := pipeline.DefaultConfig(root)

	cfg.Includes = pickList(o.includes, pc.Includes, cfg.Includes)
	cfg.Ignores = pickList(o.ignores, pc.Ignores, cfg.Ignores)
	cfg.IgnoreTestFiles = o.ignoreTests || pc.IgnoreTestFiles
	cfg.MessagesRoot = pick(o.messages, pc.path(pc.MessagesRoot), "")
	cfg.PrimaryLocale = pick(o.locale, pc.PrimaryLocale, cfg.PrimaryLocale)
	cfg.CheckedAttributes = pc.CheckedAttributes
	cfg.IgnoreTexts = pc.IgnoreTexts
	cfg.Workers = pc.Workers
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	return cfg
}

func writeProjectConfig(path string, cfg ProjectConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
