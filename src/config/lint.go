package config

// Level controls how many descriptors get scanned.
type Level string

const (
	LevelChanged Level = "changed"
	LevelFull    Level = "full"
)

// ModuleConfig holds per-rule overrides.
type ModuleConfig struct {
	Enabled *bool          `yaml:"enabled,omitempty"`
	Options map[string]any `yaml:"options,omitempty"`
	Exclude []string       `yaml:"exclude,omitempty"`
}

// LintConfig holds lint-specific configuration.
type LintConfig struct {
	Level        Level                   `yaml:"level"`
	CacheDir     string                  `yaml:"cache_dir"`
	TargetBranch string                  `yaml:"target_branch"`
	Exclude      []string                `yaml:"exclude"`
	Modules      map[string]ModuleConfig `yaml:"modules"`
	// FailOn is the lowest severity that fails the run: critical or warning.
	FailOn string `yaml:"fail_on"`
}

// DefaultLintConfig returns production defaults.
func DefaultLintConfig() LintConfig {
	return LintConfig{
		Level:   LevelFull,
		Exclude: []string{"**/build/**", "**/.dart_tool/**"},
		Modules: map[string]ModuleConfig{},
		FailOn:  "critical",
	}
}
