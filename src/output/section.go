package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const sectionWidth = 61 // inner width between │ and line end

// Section renders a framed block of report rows.
type Section struct {
	w     io.Writer
	name  string
	color bool
	rows  int
}

// NewSection writes the header for name and returns the open section.
// A non-zero elapsed is printed at the right edge of the header.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, name: name, color: color}
	s.header(elapsed)
	return s
}

// Row writes one framed line.
func (s *Section) Row(format string, args ...any) {
	s.rows++
	fmt.Fprintf(s.w, "    │ %s\n", fmt.Sprintf(format, args...))
}

// Rows reports how many rows have been written.
func (s *Section) Rows() int { return s.rows }

// Separator writes a divider inside the frame.
func (s *Section) Separator() {
	fmt.Fprintf(s.w, "    ├%s\n", strings.Repeat("─", sectionWidth))
}

// Close writes the footer.
func (s *Section) Close() {
	fmt.Fprintf(s.w, "    └%s\n", strings.Repeat("─", sectionWidth))
}

func (s *Section) header(elapsed time.Duration) {
	label := "── " + s.name + " "
	suffix := "──"
	if elapsed > 0 {
		suffix = " " + formatElapsed(elapsed) + " ──"
	}

	// Box-drawing runes are three bytes wide in UTF-8.
	fill := sectionWidth + 4 - runeLen(label) - runeLen(suffix)
	if fill < 1 {
		fill = 1
	}
	line := label + strings.Repeat("─", fill) + suffix
	if s.color {
		line = "\033[2;36m" + line + colorReset
	}
	fmt.Fprintf(s.w, "\n    %s\n", line)
}

func runeLen(s string) int { return len([]rune(s)) }

// StatusIcon maps success, failed and anything else (skipped) to a mark.
func StatusIcon(status string, color bool) string {
	var icon, tint string
	switch status {
	case "success":
		icon, tint = "✓", "\033[32m"
	case "failed":
		icon, tint = "✗", colorRed
	default:
		icon, tint = "⊘", colorYellow
	}
	if !color {
		return icon
	}
	return tint + icon + colorReset
}

// Dimmed greys out text when color is on.
func Dimmed(text string, color bool) string {
	if !color {
		return text
	}
	return colorGray + text + colorReset
}

// KV is one entry of a context block.
type KV struct {
	Key   string
	Value string
}

// ContextBlock prints key/value pairs two to a line.
func ContextBlock(w io.Writer, kv []KV) {
	if len(kv) == 0 {
		return
	}
	fmt.Fprintln(w)
	for i := 0; i < len(kv); i += 2 {
		if i+1 < len(kv) {
			fmt.Fprintf(w, "    %-12s%-14s%-11s%s\n", kv[i].Key, kv[i].Value, kv[i+1].Key, kv[i+1].Value)
			continue
		}
		fmt.Fprintf(w, "    %-12s%s\n", kv[i].Key, kv[i].Value)
	}
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	mins := int(d.Minutes())
	secs := d.Seconds() - float64(mins*60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// SummaryRow writes a named result line with its status icon.
func SummaryRow(w io.Writer, name, status, detail string, color bool) {
	fmt.Fprintf(w, "    │ %-12s%s  %s\n", name, StatusIcon(status, color), detail)
}

// SummaryTotal writes the closing total line.
func SummaryTotal(w io.Writer, elapsed time.Duration, status string, color bool) {
	fmt.Fprintf(w, "    │ %-12s%40s   %s\n", "total", formatElapsed(elapsed), StatusIcon(status, color))
}
