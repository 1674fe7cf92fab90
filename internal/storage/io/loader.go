package io

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/slok/hkxbatch/internal/conventions"
	"github.com/slok/hkxbatch/internal/model"
)

// ToolsConfigYAMLRepository loads the converter tool locations from YAML files.
type ToolsConfigYAMLRepository struct {
	fs fs.FS
}

// NewToolsConfigYAMLRepository creates a new YAML tools config repository.
func NewToolsConfigYAMLRepository(filesystem fs.FS) *ToolsConfigYAMLRepository {
	return &ToolsConfigYAMLRepository{fs: filesystem}
}

// NewToolsConfigFileRepository returns a repository rooted at the directory of
// the OS path and the file name to load from it. It works with any volume layout.
func NewToolsConfigFileRepository(path string) (repo *ToolsConfigYAMLRepository, name string, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not resolve config path: %w", err)
	}
	return NewToolsConfigYAMLRepository(os.DirFS(filepath.Dir(abs))), filepath.Base(abs), nil
}

// GetToolPaths loads a tools configuration file and returns the resulting tool
// locations. Anything not set in the file uses the conventional name inside the
// tools directory, defaultToolsDir when the file doesn't set one.
func (r *ToolsConfigYAMLRepository) GetToolPaths(ctx context.Context, path, defaultToolsDir string) (model.ToolPaths, error) {
	data, err := fs.ReadFile(r.fs, path)
	if err != nil {
		return model.ToolPaths{}, fmt.Errorf("reading tools config file: %w", err)
	}

	if ctx.Err() != nil {
		return model.ToolPaths{}, ctx.Err()
	}

	var cfg ToolsConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return model.ToolPaths{}, fmt.Errorf("parsing YAML: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return model.ToolPaths{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg.toModel(defaultToolsDir), nil
}

// ToolsConfig represents the YAML structure of the tools configuration.
type ToolsConfig struct {
	// ToolsDir is where the executables and assets are by default.
	ToolsDir string `yaml:"tools_dir"`
	// Launcher is prepended to every tool invocation, e.g. [wine].
	Launcher []string `yaml:"launcher"`
	// Tools overrides the executable of a tool. Relative paths are inside ToolsDir.
	Tools  map[string]string `yaml:"tools"`
	Assets AssetsConfig      `yaml:"assets"`
}

// AssetsConfig represents the YAML structure of the tool auxiliary files.
type AssetsConfig struct {
	SSEToLEHko          string `yaml:"sse_to_le_hko"`
	HCTFilterManagerDLL string `yaml:"hct_filter_manager_dll"`
}

func (c ToolsConfig) validate() error {
	names := make([]string, 0, len(c.Tools))
	for name := range c.Tools {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := model.ParseConverterTool(name); err != nil {
			return fmt.Errorf("tools: %w", err)
		}
		if c.Tools[name] == "" {
			return fmt.Errorf("tools: %s executable path is empty", name)
		}
	}

	for i, arg := range c.Launcher {
		if arg == "" {
			return fmt.Errorf("launcher: argument %d is empty", i)
		}
	}

	return nil
}

func (c ToolsConfig) toModel(defaultToolsDir string) model.ToolPaths {
	toolsDir := c.ToolsDir
	if toolsDir == "" {
		toolsDir = defaultToolsDir
	}

	paths := conventions.DefaultToolPaths(toolsDir)
	for name, exe := range c.Tools {
		tool, _ := model.ParseConverterTool(name)
		paths.Executables[tool] = inDir(toolsDir, exe)
	}
	if c.Assets.SSEToLEHko != "" {
		paths.SSEToLEHko = inDir(toolsDir, c.Assets.SSEToLEHko)
	}
	if c.Assets.HCTFilterManagerDLL != "" {
		paths.HCTFilterManagerDLL = inDir(toolsDir, c.Assets.HCTFilterManagerDLL)
	}
	if len(c.Launcher) > 0 {
		paths.Launcher = c.Launcher
	}

	return paths
}

func inDir(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
