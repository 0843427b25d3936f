// Package config reads and writes the titwsync rc file.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/harrisonrobin/titwsync/pkg/mapper"
	"github.com/harrisonrobin/titwsync/pkg/sync"
)

const (
	xdgAppName = "titwsync"
	configFile = "config.yaml"
	indexFile  = "index.json"
)

// apiKeyEnv overrides the configured Todoist API key when set.
const apiKeyEnv = "TODOIST_API_KEY"

type Todoist struct {
	APIKey     string            `yaml:"api_key,omitempty"`
	ProjectMap map[string]string `yaml:"project_map"`
	TagMap     map[string]string `yaml:"tag_map"`
}

type Taskwarrior struct {
	// ProjectSync holds per-project enable flags keyed by local project
	// name. Absent projects are enabled; only an explicit false disables.
	ProjectSync    map[string]bool `yaml:"project_sync"`
	DefaultProject string          `yaml:"default_project,omitempty"`
}

type Config struct {
	Todoist     Todoist     `yaml:"todoist"`
	Taskwarrior Taskwarrior `yaml:"taskwarrior"`

	// OnRemoteDelete decides what happens to a local task whose remote
	// counterpart was deleted upstream: "ignore" (default) or "complete".
	OnRemoteDelete string `yaml:"on_remote_delete,omitempty"`
}

// Dir returns the titwsync config directory (~/.config/titwsync).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// IndexPath returns the location of the identity index file.
func IndexPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, indexFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path, returning defaults when it is absent.
func LoadFrom(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// APIKey returns the Todoist API key, with the environment taking precedence
// over the rc file.
func (c *Config) APIKey() string {
	if key := os.Getenv(apiKeyEnv); key != "" {
		return key
	}
	return c.Todoist.APIKey
}

// Rules builds the immutable mapping rules for one sync pass.
func (c *Config) Rules() mapper.Rules {
	return mapper.Rules{
		Projects:       c.Todoist.ProjectMap,
		Tags:           c.Todoist.TagMap,
		ProjectSync:    c.Taskwarrior.ProjectSync,
		DefaultProject: c.Taskwarrior.DefaultProject,
	}
}

// OrphanPolicy maps the on_remote_delete setting to the reconciler's policy.
func (c *Config) OrphanPolicy() (sync.OrphanPolicy, error) {
	switch c.OnRemoteDelete {
	case "", string(sync.OrphanIgnore):
		return sync.OrphanIgnore, nil
	case string(sync.OrphanComplete):
		return sync.OrphanComplete, nil
	}
	return "", fmt.Errorf("invalid on_remote_delete value %q (want ignore or complete)", c.OnRemoteDelete)
}
