package modules

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sofmeright/droidconf/src/lint"
)

func init() {
	lint.Register("source", func() lint.Module { return &sourceModule{cfg: sourceConfig{DetectControlASCII: true}} })
}

type sourceConfig struct {
	DetectControlASCII bool `json:"detect_control_ascii"`
	// AllowNBSP accepts U+00A0, which some editors insert in string literals.
	AllowNBSP bool `json:"allow_nbsp"`
}

// sourceModule scans raw descriptor text for merge conflict markers, mixed
// line endings and characters that render differently than they evaluate.
type sourceModule struct {
	cfg sourceConfig
}

func (m *sourceModule) Name() string         { return "source" }
func (m *sourceModule) DefaultEnabled() bool { return true }

// Configure implements lint.ConfigurableModule.
func (m *sourceModule) Configure(opts map[string]any) error {
	cfg := sourceConfig{DetectControlASCII: true}
	if err := decodeOptions(m.Name(), opts, &cfg); err != nil {
		return err
	}
	m.cfg = cfg
	return nil
}

func (m *sourceModule) Check(ctx context.Context, t *lint.Target) ([]lint.Finding, error) {
	var findings []lint.Finding
	if crlf := bytes.Count(t.Source, []byte("\r\n")); crlf > 0 && bytes.Count(t.Source, []byte("\n")) > crlf {
		findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, 1, "mixed line endings (CRLF and LF)"))
	}

	scanner := bufio.NewScanner(bytes.NewReader(t.Source))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if marker := conflictMarker(string(line)); marker != "" {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityCritical, lineNum, "merge conflict marker: %s", marker))
			continue
		}

		if !utf8.Valid(line) {
			findings = append(findings, t.Finding(m.Name(), lint.SeverityWarning, lineNum, "invalid UTF-8 encoding"))
			continue
		}

		col := 0
		for i := 0; i < len(line); {
			r, size := utf8.DecodeRune(line[i:])
			col++
			i += size

			// A leading BOM is legal.
			if r == '\uFEFF' && lineNum == 1 && col == 1 {
				continue
			}
			if r == '\u00A0' && m.cfg.AllowNBSP {
				continue
			}
			msg := checkRune(r)
			if msg == "" {
				continue
			}
			if msg == msgControl && !m.cfg.DetectControlASCII {
				continue
			}
			f := t.Finding(m.Name(), severityForRune(r), lineNum, "%s (U+%04X)", msg, r)
			f.Column = col
			findings = append(findings, f)
		}
	}

	return findings, scanner.Err()
}

func conflictMarker(line string) string {
	trimmed := strings.TrimRight(line, " \t\r")
	switch {
	case strings.HasPrefix(trimmed, "<<<<<<<"):
		return "<<<<<<<"
	case trimmed == "=======":
		return "======="
	case strings.HasPrefix(trimmed, ">>>>>>>"):
		return ">>>>>>>"
	}
	return ""
}

const msgControl = "ASCII control character"

func checkRune(r rune) string {
	switch r {
	// Bidi controls change rendering direction.
	case '\u202A':
		return "bidi override: left-to-right embedding"
	case '\u202B':
		return "bidi override: right-to-left embedding"
	case '\u202C':
		return "bidi override: pop directional formatting"
	case '\u202D':
		return "bidi override: left-to-right override"
	case '\u202E':
		return "bidi override: right-to-left override"
	case '\u2066':
		return "bidi override: left-to-right isolate"
	case '\u2067':
		return "bidi override: right-to-left isolate"
	case '\u2068':
		return "bidi override: first strong isolate"
	case '\u2069':
		return "bidi override: pop directional isolate"

	// Zero-width characters.
	case '\u200B':
		return "zero-width space"
	case '\u200C':
		return "zero-width non-joiner"
	case '\u200D':
		return "zero-width joiner"
	case '\uFEFF':
		return "zero-width no-break space (unexpected BOM)"

	// Other invisible characters.
	case '\u00AD':
		return "soft hyphen (invisible)"
	case '\u2060':
		return "word joiner (invisible)"
	case '\u180E':
		return "mongolian vowel separator (invisible whitespace)"

	// Whitespace that looks like a space.
	case '\u00A0':
		return "non-breaking space"
	case '\u2000', '\u2001', '\u2002', '\u2003', '\u2004',
		'\u2005', '\u2006', '\u2007', '\u2008', '\u2009', '\u200A', '\u205F', '\u3000':
		return "unusual whitespace character"
	}

	if r != '\t' && r != '\r' && r < 0x80 && unicode.IsControl(r) {
		return msgControl
	}
	if r >= 0xE0001 && r <= 0xE007F {
		return "tag character (invisible)"
	}
	return ""
}

func severityForRune(r rune) lint.Severity {
	switch {
	case r >= '\u202A' && r <= '\u202E', r >= '\u2066' && r <= '\u2069':
		return lint.SeverityCritical
	case r == '\u200B' || r == '\u200C' || r == '\u200D' || r == '\uFEFF':
		return lint.SeverityCritical
	case r >= 0xE0001 && r <= 0xE007F:
		return lint.SeverityCritical
	}
	return lint.SeverityWarning
}
