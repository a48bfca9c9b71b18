// Package config loads the YAML configuration that drives one import run.
package config

import (
	"fmt"
	"os"
	"regexp"

	yaml "gopkg.in/yaml.v2"
)

const (
	DefaultBranch = "main"
	DefaultWindow = 300
)

// BranchMapping renames a CVS branch tag as it is imported, e.g. mapping
// vendor branch tags onto a conventional git branch naming scheme.
type BranchMapping struct {
	Name   string `yaml:"name"`   // regex matched against the CVS branch tag
	Prefix string `yaml:"prefix"` // prefix to prepend to matching branch names
}

// Config is the full set of settings for one cvsgitimport run.
type Config struct {
	CVSRoot          string          `yaml:"cvsroot"`
	GitRepo          string          `yaml:"git_repo"`
	StatePath        string          `yaml:"state_path"`
	DefaultBranch    string          `yaml:"default_branch"`
	Window           int64           `yaml:"window_seconds"`
	IgnoreFileErrors bool            `yaml:"ignore_file_errors"`
	BranchMappings   []BranchMapping `yaml:"branch_mappings"`
}

// Unmarshal parses raw YAML into a Config, applying defaults first so
// fields the document omits still come back populated.
func Unmarshal(raw []byte) (*Config, error) {
	cfg := &Config{
		DefaultBranch: DefaultBranch,
		Window:        DefaultWindow,
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v. make sure to use 'single quotes' around strings with special characters (like match patterns)", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads and parses the config file at filename.
func LoadFile(filename string) (*Config, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err)
	}
	cfg, err := Unmarshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %v", filename, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, m := range c.BranchMappings {
		if _, err := regexp.Compile(m.Name); err != nil {
			return fmt.Errorf("failed to parse '%s' as a regex", m.Name)
		}
	}
	if c.Window < 0 {
		return fmt.Errorf("window_seconds must not be negative, got %d", c.Window)
	}
	return nil
}

// MapBranch applies the first matching BranchMapping's prefix to name,
// returning name unchanged if nothing matches.
func (c *Config) MapBranch(name string) string {
	for _, m := range c.BranchMappings {
		matched, err := regexp.MatchString(m.Name, name)
		if err == nil && matched {
			return m.Prefix + name
		}
	}
	return name
}
