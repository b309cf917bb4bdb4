package badge

import (
	"encoding/base64"
	"fmt"
	"math"
	"strings"
)

const (
	badgeHeight = 20
	textPadding = 10
)

// renderSVG lays out a flat badge with the font embedded as a data URL, so
// the measured widths hold wherever the SVG is displayed.
func (e *Engine) renderSVG(b Badge) string {
	labelWidth := e.segmentWidth(b.Label)
	valueWidth := e.segmentWidth(b.Value)
	total := labelWidth + valueWidth

	label := xmlEscape(b.Label)
	value := xmlEscape(b.Value)
	family := xmlEscape(fmt.Sprintf("'%s',Verdana,Geneva,sans-serif", e.metrics.FontName()))

	var s strings.Builder
	fmt.Fprintf(&s, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" role="img" aria-label="%s: %s">`, total, badgeHeight, label, value)
	fmt.Fprintf(&s, `<title>%s: %s</title>`, label, value)

	s.WriteString(`<defs>`)
	fmt.Fprintf(&s, `<style type="text/css">%s</style>`, fontFaceCSS(e.metrics.FontName(), e.metrics.FontData()))
	s.WriteString(`<linearGradient id="b" x2="0" y2="100%">`)
	s.WriteString(`<stop offset="0" stop-color="#bbb" stop-opacity=".1"/><stop offset="1" stop-opacity=".1"/>`)
	s.WriteString(`</linearGradient></defs>`)

	fmt.Fprintf(&s, `<mask id="a"><rect width="%d" height="%d" rx="3" fill="#fff"/></mask>`, total, badgeHeight)
	s.WriteString(`<g mask="url(#a)">`)
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="#555"/>`, labelWidth, badgeHeight)
	fmt.Fprintf(&s, `<rect x="%d" width="%d" height="%d" fill="%s"/>`, labelWidth, valueWidth, badgeHeight, xmlEscape(b.Color))
	fmt.Fprintf(&s, `<rect width="%d" height="%d" fill="url(#b)"/>`, total, badgeHeight)
	s.WriteString(`</g>`)

	fmt.Fprintf(&s, `<g fill="#fff" text-anchor="middle" font-family="%s" font-size="%g">`, family, e.metrics.FontSize())
	writeText(&s, labelWidth/2, label)
	writeText(&s, labelWidth+valueWidth/2, value)
	s.WriteString(`</g></svg>`)
	return s.String()
}

func (e *Engine) segmentWidth(text string) int {
	return int(math.Round(e.metrics.TextWidth(text))) + textPadding
}

// writeText draws text with a one pixel drop shadow.
func writeText(s *strings.Builder, x int, text string) {
	fmt.Fprintf(s, `<text x="%d" y="15" fill="#010101" fill-opacity=".3">%s</text>`, x, text)
	fmt.Fprintf(s, `<text x="%d" y="14">%s</text>`, x, text)
}

// fontFaceCSS returns an @font-face rule carrying the font as base64.
func fontFaceCSS(name string, data []byte) string {
	mime, format := "ttf", "truetype"
	if len(data) >= 4 && string(data[:4]) == "OTTO" {
		mime, format = "otf", "opentype"
	}
	return fmt.Sprintf(`@font-face{font-family:'%s';src:url(data:font/%s;base64,%s) format('%s')}`,
		name, mime, base64.StdEncoding.EncodeToString(data), format)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

func xmlEscape(s string) string { return xmlReplacer.Replace(s) }
