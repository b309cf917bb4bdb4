package config

// BadgeConfig holds status badge generation configuration.
type BadgeConfig struct {
	Label    string  `yaml:"label"`     // left side text
	Output   string  `yaml:"output"`    // file path
	FontSize float64 `yaml:"font_size"` // pixel size
	FontFile string  `yaml:"font_file"` // path to custom TTF/OTF (default: Go Regular)
}

// DefaultBadgeConfig returns sensible defaults for badge generation.
func DefaultBadgeConfig() BadgeConfig {
	return BadgeConfig{
		Label:    "droidconf",
		Output:   ".droidconf/badges/droidconf.svg",
		FontSize: 11,
	}
}

// ReportConfig controls machine-readable reports.
type ReportConfig struct {
	JUnitDir string `yaml:"junit_dir"` // written when running in CI
}

// DefaultReportConfig returns sensible defaults for reports.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{JUnitDir: ".droidconf/reports"}
}
