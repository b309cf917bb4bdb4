package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/validate"
)

// Severity indicates how serious a finding is.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity is the inverse of Severity.String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// Finding represents a single lint result.
type Finding struct {
	File     string
	Line     int
	Column   int
	Module   string
	Severity Severity
	Message  string
}

// SortFindings orders findings by file, line, then module.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		if a.Module != b.Module {
			return a.Module < b.Module
		}
		return a.Message < b.Message
	})
}

// CountAtLeast returns how many findings are at or above min.
func CountAtLeast(findings []Finding, min Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity >= min {
			n++
		}
	}
	return n
}

// Target is one descriptor handed to every module.
type Target struct {
	Path    string // slash path relative to the scan root
	AbsPath string // absolute path on disk
	Source  []byte

	// Descriptor is nil when the source failed to parse.
	Descriptor *descriptor.Descriptor
	// Config is nil when parsing or variable resolution failed.
	Config *descriptor.BuildConfig
	// Err is the *descriptor.SyntaxError or *descriptor.UnresolvedError that
	// left Descriptor or Config unset.
	Err error

	// Variables are the toolchain values the descriptor referenced.
	Variables map[string]string
}

// Validate returns the load failure, or the validator's verdict on Config.
func (t *Target) Validate() error {
	if t.Err != nil {
		return t.Err
	}
	if t.Config == nil {
		return fmt.Errorf("%s: descriptor not resolved", t.Path)
	}
	_, err := validate.Validate(*t.Config)
	return err
}

// Line returns the declaration line of key in the descriptor, or 0.
func (t *Target) Line(key string) int {
	return t.Descriptor.Line(key)
}

// Finding builds a finding located in this target.
func (t *Target) Finding(module string, sev Severity, line int, format string, args ...any) Finding {
	return Finding{
		File:     t.Path,
		Line:     line,
		Module:   module,
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	}
}
