package text

import "github.com/BergerAPI/renderer/gpu"

// Glyph is the placement of a rasterized glyph in an atlas.
// Glyphs are values and never change after creation.
type Glyph struct {
	// Atlas is the index of the owning atlas.
	Atlas int

	// Multicolor reports that the atlas pixels carry their own colors.
	Multicolor bool

	// Top is the distance from the baseline to the top of the bitmap and
	// Left the distance from the pen position to its left edge.
	Top, Left int16

	Width, Height int16

	// UV rectangle within the atlas texture, normalized to [0, 1].
	// UVBot is the offset of the first bitmap row.
	UVLeft, UVBot, UVWidth, UVHeight float32

	tex gpu.Texture
}

// Texture returns the atlas texture holding the glyph.
func (g Glyph) Texture() gpu.Texture {
	return g.tex
}

// Empty reports whether the glyph has no pixels.
func (g Glyph) Empty() bool {
	return g.Width == 0 || g.Height == 0
}
