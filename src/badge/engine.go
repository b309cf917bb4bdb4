package badge

import (
	"fmt"
	"os"
	"path/filepath"
)

// Badge colors.
const (
	ColorPassed   = "#4c1"
	ColorWarning  = "#dfb317"
	ColorCritical = "#e05d44"
)

// Engine renders badges with one font.
type Engine struct {
	metrics *FontMetrics
}

// New creates a badge engine with the given font metrics.
func New(metrics *FontMetrics) *Engine {
	return &Engine{metrics: metrics}
}

// Badge is the content of one two-part badge.
type Badge struct {
	Label string // left side text
	Value string // right side text
	Color string // hex fill of the right side
}

// Generate returns the badge as a shields.io style flat SVG.
func (e *Engine) Generate(b Badge) string {
	return e.renderSVG(b)
}

// Write renders b and writes it to path, creating parent directories.
func (e *Engine) Write(path string, b Badge) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating badge directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(e.Generate(b)), 0o644); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}
	return nil
}

// Status summarizes a run: invalid descriptors and critical findings turn the
// badge red, warnings yellow, and a clean run reads "valid".
func Status(label string, invalid, critical, warnings int) Badge {
	switch {
	case invalid > 0:
		return Badge{Label: label, Value: fmt.Sprintf("%d invalid", invalid), Color: ColorCritical}
	case critical > 0:
		return Badge{Label: label, Value: fmt.Sprintf("%d critical", critical), Color: ColorCritical}
	case warnings > 0:
		return Badge{Label: label, Value: plural(warnings, "warning", "warnings"), Color: ColorWarning}
	}
	return Badge{Label: label, Value: "valid", Color: ColorPassed}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
