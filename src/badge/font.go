// Package badge renders flat SVG status badges sized from real glyph metrics.
package badge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
)

// DefaultFontSize is used when a badge config leaves font_size unset.
const DefaultFontSize = 11

// FontMetrics holds measured glyph widths and the font bytes embedded into SVGs.
type FontMetrics struct {
	name     string
	size     float64
	data     []byte
	advances map[rune]float64 // printable ASCII
	fallback float64          // average advance, used for anything else
}

// TextWidth returns the pixel width of s.
func (m *FontMetrics) TextWidth(s string) float64 {
	var w float64
	for _, r := range s {
		if adv, ok := m.advances[r]; ok {
			w += adv
		} else {
			w += m.fallback
		}
	}
	return w
}

// FontData returns the raw font bytes.
func (m *FontMetrics) FontData() []byte { return m.data }

// FontName returns the font family name.
func (m *FontMetrics) FontName() string { return m.name }

// FontSize returns the point size the metrics were measured at.
func (m *FontMetrics) FontSize() float64 { return m.size }

// LoadFont parses a TTF/OTF and measures printable ASCII at size.
func LoadFont(name string, data []byte, size float64) (*FontMetrics, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", name, err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", name, err)
	}
	defer face.Close()

	m := &FontMetrics{name: name, size: size, data: data, advances: make(map[rune]float64, 95)}
	var total float64
	for r := rune(32); r <= 126; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		px := float64(adv) / 64 // 26.6 fixed point
		m.advances[r] = px
		total += px
	}
	if n := len(m.advances); n > 0 {
		m.fallback = total / float64(n)
	} else {
		m.fallback = size * 0.6
	}

	if family, err := f.Name(&sfnt.Buffer{}, sfnt.NameIDFamily); err == nil && family != "" {
		m.name = family
	}
	return m, nil
}

// LoadDefaultFont measures the bundled Go Regular face.
func LoadDefaultFont(size float64) (*FontMetrics, error) {
	return LoadFont("Go", goregular.TTF, size)
}

// LoadFontFile loads a TTF/OTF from disk.
func LoadFontFile(path string, size float64) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font file %s: %w", path, err)
	}
	return LoadFont(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), data, size)
}
