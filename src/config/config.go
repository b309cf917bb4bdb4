package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".droidconf.yml"

// Config is the top-level droidconf configuration.
type Config struct {
	Version int `yaml:"version"`

	// Descriptors lists descriptor files or ** globs relative to the scan
	// root. Empty means discover them.
	Descriptors []string        `yaml:"descriptors"`
	Toolchain   ToolchainConfig `yaml:"toolchain"`
	Lint        LintConfig      `yaml:"lint"`
	Badge       BadgeConfig     `yaml:"badge"`
	Report      ReportConfig    `yaml:"report"`
}

// Load reads configuration from a YAML file.
// If path is empty, it tries the default file.
// Returns defaults if the default file doesn't exist; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return defaults(), nil
		}
		return nil, err
	}

	data, err = MigrateToLatest(data)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if _, err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Version:   1,
		Toolchain: DefaultToolchainConfig(),
		Lint:      DefaultLintConfig(),
		Badge:     DefaultBadgeConfig(),
		Report:    DefaultReportConfig(),
	}
}

// Default returns the configuration used when no file is present.
func Default() *Config { return defaults() }
