package eventcert

import "unicode/utf8"

/*
 * tdewolff/canvas uses mm as the unit of measurement. Everything exported by this package takes px,
 * with 1px = 1pt at 72 DPI, and converts to mm at the drawing step.
 */

const DPI = 72

// Converts pixels to millimeters
func pxToMM(px float64) float64 {
	return (px * 25.4) / DPI
}

// Converts millimeters to pixels
func mmToPx(mm float64) float64 {
	return (mm * DPI) / 25.4
}

// TextMeasurer returns the advance width in px of text drawn with style.
type TextMeasurer interface {
	MeasureText(text string, style ResolvedStyle) float64
}

// FontMeasurer measures with the same font faces the renderer draws with.
type FontMeasurer struct {
	Fonts *FontLoader
}

func NewFontMeasurer(fonts *FontLoader) *FontMeasurer {
	return &FontMeasurer{Fonts: fonts}
}

func (m *FontMeasurer) MeasureText(text string, style ResolvedStyle) float64 {
	if text == "" {
		return 0
	}
	face, err := m.Fonts.Face(style)
	if err != nil {
		return ApproxMeasurer{}.MeasureText(text, style)
	}
	return mmToPx(face.TextWidth(text))
}

// ApproxMeasurer estimates widths from an average glyph advance. It is deterministic and needs
// no font files.
type ApproxMeasurer struct{}

func (ApproxMeasurer) MeasureText(text string, style ResolvedStyle) float64 {
	advance := 0.5
	switch style.FontWeight {
	case FontWeightBold:
		advance = 0.55
	case FontWeightLighter:
		advance = 0.48
	}
	return float64(utf8.RuneCountInString(text)) * style.FontSize * advance
}
