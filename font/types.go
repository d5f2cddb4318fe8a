package font

import (
	"fmt"
	"math"

	"golang.org/x/image/math/fixed"
)

// Key identifies a font loaded by a Rasterizer.
type Key uint32

// Size is a font size in points stored as 26.6 fixed point, so that it
// can be compared and hashed exactly.
type Size fixed.Int26_6

// NewSize converts a size in points to a Size.
func NewSize(points float64) Size {
	return Size(math.Round(points * 64))
}

// Points returns the size in points.
func (s Size) Points() float64 {
	return float64(s) / 64
}

// String implements fmt.Stringer.
func (s Size) String() string {
	return fmt.Sprintf("%gpt", s.Points())
}

// Weight is the weight of a font face.
type Weight uint8

const (
	WeightNormal Weight = iota
	WeightBold
)

// Slant is the slant of a font face.
type Slant uint8

const (
	SlantNormal Slant = iota
	SlantItalic
)

// Style selects a face within a family.
type Style struct {
	Weight Weight
	Slant  Slant
}

// Desc describes a font to load.
type Desc struct {
	// Family is the family name. Empty selects DefaultFamily.
	Family string
	Style  Style
}

// GlyphKey is the identity of a rasterized glyph.
// It is comparable and used as a map key.
type GlyphKey struct {
	Font Key
	Char rune
	Size Size
}

// PixelFormat is the layout of Bitmap.Pixels.
type PixelFormat uint8

const (
	// FormatRGB is 3 bytes per pixel holding per-channel coverage of a
	// monochrome glyph. The glyph color is applied at draw time.
	FormatRGB PixelFormat = iota

	// FormatRGBA is 4 bytes per pixel of non-premultiplied color, used by
	// multicolor glyphs such as emoji.
	FormatRGBA
)

// BytesPerPixel returns the number of bytes per pixel for the format.
func (f PixelFormat) BytesPerPixel() int {
	if f == FormatRGBA {
		return 4
	}
	return 3
}

// String implements fmt.Stringer.
func (f PixelFormat) String() string {
	switch f {
	case FormatRGB:
		return "RGB"
	case FormatRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("PixelFormat(%d)", uint8(f))
	}
}

// Bitmap is a rasterized glyph.
//
// Left is the horizontal distance from the pen position to the left edge
// of the bitmap. Top is the distance from the baseline up to the top edge.
// Pixels holds Width*Height pixels in Format, rows tightly packed.
type Bitmap struct {
	Width  int
	Height int
	Left   int
	Top    int
	Format PixelFormat
	Pixels []byte
}

// Multicolor reports whether the bitmap carries its own colors.
func (b Bitmap) Multicolor() bool {
	return b.Format == FormatRGBA
}

// Metrics are the line metrics of a font at one size, in pixels.
type Metrics struct {
	// LineHeight is the recommended distance between two baselines.
	LineHeight float64

	// AverageAdvance is the mean advance of the printable ASCII glyphs.
	// It is the fallback advance for glyphs with no ink.
	AverageAdvance float64

	// Ascent is the distance from the baseline to the top of a line.
	Ascent float64

	// Descent is the distance from the baseline to the bottom of a line.
	Descent float64
}

// Rasterizer loads fonts and rasterizes their glyphs.
type Rasterizer interface {
	// LoadFont loads the font described by desc and prepares it for size.
	// Loading the same Desc again returns the same Key.
	LoadFont(desc Desc, size Size) (Key, error)

	// Metrics returns the line metrics of a loaded font at size.
	Metrics(key Key, size Size) (Metrics, error)

	// Glyph rasterizes one character. When the font has no glyph for the
	// character it returns a *MissingGlyphError holding a fallback bitmap.
	Glyph(key GlyphKey) (Bitmap, error)
}
