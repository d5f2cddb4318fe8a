package font

import (
	"errors"
	"fmt"
)

// Sentinel errors for the font package.
var (
	// ErrFontNotFound is returned when no registered family matches a Desc.
	ErrFontNotFound = errors.New("font: font not found")

	// ErrUnknownKey is returned for a Key that was not issued by LoadFont.
	ErrUnknownKey = errors.New("font: unknown font key")

	// ErrEmptyFontData is returned when a family is registered without data.
	ErrEmptyFontData = errors.New("font: empty font data")

	// ErrRasterize is returned when a glyph outline cannot be rasterized.
	ErrRasterize = errors.New("font: glyph rasterization failed")
)

// MissingGlyphError reports that a font has no glyph for Char.
// Glyph is the fallback bitmap to draw instead.
type MissingGlyphError struct {
	Char  rune
	Glyph Bitmap
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("font: missing glyph for U+%04X", e.Char)
}
