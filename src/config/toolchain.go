package config

import (
	"fmt"

	"dario.cat/mergo"
)

// ToolchainConfig controls where flutter.* variables come from. Lookup order is
// variables (with overrides merged in), environment, properties files, then
// the Flutter plugin defaults.
type ToolchainConfig struct {
	Variables       map[string]string   `yaml:"variables"`
	EnvPrefix       string              `yaml:"env_prefix"`
	PropertiesFiles []string            `yaml:"properties_files"`
	UseDefaults     bool                `yaml:"use_defaults"`
	Overrides       []ToolchainOverride `yaml:"overrides"`
}

// ToolchainOverride replaces variables for descriptors whose path matches.
type ToolchainOverride struct {
	Match     string            `yaml:"match"`
	Variables map[string]string `yaml:"variables"`
}

// DefaultToolchainConfig returns production defaults.
func DefaultToolchainConfig() ToolchainConfig {
	return ToolchainConfig{
		Variables:       map[string]string{},
		EnvPrefix:       "DROIDCONF_",
		PropertiesFiles: []string{"local.properties"},
		UseDefaults:     true,
	}
}

// VariablesFor returns the configured variables for the descriptor at path,
// with every matching override merged over the base set in declaration order.
func (t ToolchainConfig) VariablesFor(path string, match func(pattern, path string) bool) (map[string]string, error) {
	vars := make(map[string]string, len(t.Variables))
	if len(t.Variables) > 0 {
		if err := mergo.Merge(&vars, t.Variables); err != nil {
			return nil, fmt.Errorf("toolchain.variables: %w", err)
		}
	}
	for i, o := range t.Overrides {
		if len(o.Variables) == 0 || !match(o.Match, path) {
			continue
		}
		if err := mergo.Merge(&vars, o.Variables, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("toolchain.overrides[%d]: %w", i, err)
		}
	}
	return vars, nil
}
