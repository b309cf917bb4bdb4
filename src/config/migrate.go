package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LatestVersion is the current config schema version.
const LatestVersion = 1

// MigrateToLatest takes raw YAML data and migrates it to the current schema version.
// Returns the migrated YAML bytes ready for decoding or writing.
//
// Migration chain:
//
//	version 1 → current (no-op)
func MigrateToLatest(data []byte) ([]byte, error) {
	ver, err := peekVersion(data)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	switch ver {
	case LatestVersion:
		return data, nil
	case 0:
		return nil, fmt.Errorf("migrate: config has no version field; add \"version: %d\"", LatestVersion)
	default:
		return nil, fmt.Errorf("migrate: unknown config version %d (latest supported: %d)", ver, LatestVersion)
	}
}

// peekVersion extracts the version field from raw YAML without full parsing.
// Returns 0 if no version field is present.
func peekVersion(data []byte) (int, error) {
	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	return probe.Version, nil
}
