package descriptor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a descriptor source syntax.
type Format string

const (
	FormatGradle Format = "gradle-kts"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// DetectFormat picks a format from the file name. Returns "" for unsupported files.
func DetectFormat(name string) Format {
	base := strings.ToLower(filepath.Base(name))
	switch {
	case strings.HasSuffix(base, ".gradle.kts"):
		return FormatGradle
	case strings.HasSuffix(base, ".yml"), strings.HasSuffix(base, ".yaml"):
		return FormatYAML
	case strings.HasSuffix(base, ".toml"):
		return FormatTOML
	}
	return ""
}

// SyntaxError is a parse failure at a source position.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// Load reads and parses the descriptor at path.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse parses descriptor source. name selects the format and is recorded as
// the descriptor's Source.
func Parse(name string, data []byte) (*Descriptor, error) {
	var (
		d   *Descriptor
		err error
	)
	switch DetectFormat(name) {
	case FormatGradle:
		d, err = parseGradle(name, data)
	case FormatYAML:
		d, err = parseYAML(name, data)
	case FormatTOML:
		d, err = parseTOML(name, data)
	default:
		return nil, fmt.Errorf("%s: unsupported descriptor format", name)
	}
	if err != nil {
		return nil, err
	}
	d.Source = name
	return d, nil
}
