package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

var validLevels = map[Level]bool{LevelChanged: true, LevelFull: true}

var validFailOn = map[string]bool{"critical": true, "warning": true}

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Version ───────────────────────────────────────────────────────────

	if cfg.Version != LatestVersion {
		errs = append(errs, fmt.Sprintf("version: must be %d, got %d", LatestVersion, cfg.Version))
	}

	// ── Descriptors ───────────────────────────────────────────────────────

	seen := make(map[string]bool)
	for i, d := range cfg.Descriptors {
		dpath := fmt.Sprintf("descriptors[%d]", i)
		switch {
		case strings.TrimSpace(d) == "":
			errs = append(errs, fmt.Sprintf("%s: path is empty", dpath))
		case filepath.IsAbs(d):
			errs = append(errs, fmt.Sprintf("%s: %q must be relative to the scan root", dpath, d))
		case seen[d]:
			warnings = append(warnings, fmt.Sprintf("%s: duplicate entry %q", dpath, d))
		}
		seen[d] = true
	}

	// ── Toolchain ─────────────────────────────────────────────────────────

	for name := range cfg.Toolchain.Variables {
		if !isVariableName(name) {
			errs = append(errs, fmt.Sprintf("toolchain.variables: key %q is not a valid variable name (must match [a-zA-Z][a-zA-Z0-9_.]*)", name))
		}
	}
	for i, o := range cfg.Toolchain.Overrides {
		opath := fmt.Sprintf("toolchain.overrides[%d]", i)
		if o.Match == "" {
			errs = append(errs, fmt.Sprintf("%s: match is required", opath))
		}
		if len(o.Variables) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s: no variables to override", opath))
		}
		for name := range o.Variables {
			if !isVariableName(name) {
				errs = append(errs, fmt.Sprintf("%s.variables: key %q is not a valid variable name", opath, name))
			}
		}
	}
	for i, f := range cfg.Toolchain.PropertiesFiles {
		if strings.ContainsRune(f, '/') || strings.ContainsRune(f, filepath.Separator) {
			errs = append(errs, fmt.Sprintf("toolchain.properties_files[%d]: %q must be a base name; it is searched upward from each descriptor", i, f))
		}
	}

	// ── Lint ──────────────────────────────────────────────────────────────

	if cfg.Lint.Level != "" && !validLevels[cfg.Lint.Level] {
		errs = append(errs, fmt.Sprintf("lint.level: unknown level %q (supported: changed, full)", cfg.Lint.Level))
	}
	if cfg.Lint.FailOn != "" && !validFailOn[cfg.Lint.FailOn] {
		errs = append(errs, fmt.Sprintf("lint.fail_on: unknown severity %q (supported: critical, warning)", cfg.Lint.FailOn))
	}
	names := make([]string, 0, len(cfg.Lint.Modules))
	for name := range cfg.Lint.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !isVariableName(name) {
			errs = append(errs, fmt.Sprintf("lint.modules: key %q is not a valid module name", name))
		}
	}

	// ── Badge ─────────────────────────────────────────────────────────────

	if cfg.Badge.FontSize < 0 {
		errs = append(errs, fmt.Sprintf("badge.font_size: must be positive, got %g", cfg.Badge.FontSize))
	}
	if cfg.Badge.Output != "" {
		errs = append(errs, validateOutputPath(cfg.Badge.Output, "badge.output")...)
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}

func isVariableName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-'):
		default:
			return false
		}
	}
	return true
}

// validateOutputPath checks that an output path stays inside the working tree.
func validateOutputPath(p string, field string) []string {
	if filepath.IsAbs(p) {
		return []string{fmt.Sprintf("%s: output path %q must be relative, not absolute", field, p)}
	}
	if strings.HasPrefix(p, "~") {
		return []string{fmt.Sprintf("%s: output path %q must not start with ~", field, p)}
	}
	if strings.Contains(p, "..") {
		return []string{fmt.Sprintf("%s: output path %q must not contain '..'", field, p)}
	}
	normalized := strings.TrimPrefix(p, "./")
	if clean := filepath.Clean(normalized); clean != normalized {
		return []string{fmt.Sprintf("%s: output path %q is not in canonical form (cleaned to %q)", field, p, clean)}
	}
	return nil
}
