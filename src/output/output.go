package output

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sofmeright/droidconf/src/descriptor"
	"github.com/sofmeright/droidconf/src/lint"
	"github.com/sofmeright/droidconf/src/validate"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor reports whether output should carry ANSI colors.
// NO_COLOR and TERM=dumb switch color off; CI logs keep it.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}

func colorize(text, color string, on bool) string {
	if !on {
		return text
	}
	return color + text + colorReset
}

// Tally counts findings per severity.
type Tally struct {
	Critical int
	Warning  int
	Info     int
}

// Count tallies findings.
func Count(findings []lint.Finding) Tally {
	var t Tally
	for _, f := range findings {
		switch f.Severity {
		case lint.SeverityCritical:
			t.Critical++
		case lint.SeverityWarning:
			t.Warning++
		default:
			t.Info++
		}
	}
	return t
}

// Total is the number of findings tallied.
func (t Tally) Total() int { return t.Critical + t.Warning + t.Info }

// FindingsSummaryLine returns a one-line findings summary, optionally colored.
func FindingsSummaryLine(t Tally, descriptors int, color bool) string {
	var parts []string
	if t.Critical > 0 {
		parts = append(parts, colorize(fmt.Sprintf("%d critical", t.Critical), colorRed, color))
	}
	if t.Warning > 0 {
		parts = append(parts, colorize(fmt.Sprintf("%d warning", t.Warning), colorYellow, color))
	}
	if t.Info > 0 {
		parts = append(parts, fmt.Sprintf("%d info", t.Info))
	}
	summary := "no findings"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}
	total := colorize(fmt.Sprintf("%d", t.Total()), colorBold, color)
	return fmt.Sprintf("%s findings in %d descriptors: %s", total, descriptors, summary)
}

// severityTag returns a four-letter severity label, optionally colored.
func severityTag(s lint.Severity, color bool) string {
	switch s {
	case lint.SeverityCritical:
		return colorize("CRIT", colorRed, color)
	case lint.SeverityWarning:
		return colorize("WARN", colorYellow, color)
	case lint.SeverityInfo:
		return colorize("INFO", colorGray, color)
	}
	return s.String()
}

// LintTable writes the per-module stats rows of a lint section.
func LintTable(sec *Section, stats []lint.ModuleStats) {
	sec.Row("%-14s%6s  %6s  %8s  %8s  %s", "module", "files", "cached", "findings", "critical", "time")
	for _, s := range stats {
		sec.Row("%-14s%6d  %6d  %8d  %8d  %s", s.Name, s.Files, s.Cached, s.Findings, s.Critical, formatElapsed(s.Elapsed))
	}
}

// SectionFindings renders findings grouped by file inside a section.
// Findings must already be ordered with lint.SortFindings.
func SectionFindings(sec *Section, findings []lint.Finding, color bool) {
	if len(findings) == 0 {
		return
	}
	sec.Row("")
	file := ""
	for i, f := range findings {
		if i == 0 || f.File != file {
			if i > 0 {
				sec.Row("")
			}
			file = f.File
			sec.Row("%s", colorize(file, colorBold, color))
		}
		var loc string
		switch {
		case f.Line == 0:
			loc = "-"
		case f.Column > 0:
			loc = fmt.Sprintf("%d:%d", f.Line, f.Column)
		default:
			loc = fmt.Sprintf("%d", f.Line)
		}
		sec.Row("  %-8s %s  %s %s", loc, severityTag(f.Severity, color), colorize(fmt.Sprintf("%-11s", f.Module), colorCyan, color), f.Message)
	}
	sec.Row("")
}

// RowStatus writes a row with label, detail and a status icon.
func RowStatus(sec *Section, label, detail, status string, color bool) {
	icon := StatusIcon(status, color)
	if detail == "" {
		sec.Row("%s %s", label, icon)
		return
	}
	sec.Row("%s %s  %s", icon, label, detail)
}

// Describe renders a descriptor load or validation failure on one line.
func Describe(err error) string {
	var (
		ce  *validate.ConfigError
		ue  *descriptor.UnresolvedError
		syn *descriptor.SyntaxError
	)
	switch {
	case errors.As(err, &ce):
		return ce.Kind.String() + ": " + ce.Error()
	case errors.As(err, &ue):
		return "Unresolved: " + ue.Error()
	case errors.As(err, &syn):
		return "SyntaxError: " + syn.Error()
	}
	return err.Error()
}

// ValidationRow writes one descriptor's verdict inside a validate section.
func ValidationRow(sec *Section, path string, err error, color bool) {
	if err == nil {
		sec.Row("%s %s", StatusIcon("success", color), path)
		return
	}
	sec.Row("%s %s", StatusIcon("failed", color), path)
	sec.Row("    %s", Dimmed(Describe(err), color))
}

// ValidationSummaryLine returns "N valid, M invalid of T descriptors".
func ValidationSummaryLine(valid, invalid int, color bool) string {
	bad := fmt.Sprintf("%d invalid", invalid)
	if invalid > 0 {
		bad = colorize(bad, colorRed, color)
	}
	return fmt.Sprintf("%d valid, %s of %d descriptors", valid, bad, valid+invalid)
}
