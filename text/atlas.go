package text

import (
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/BergerAPI/renderer/font"
	"github.com/BergerAPI/renderer/gpu"
)

// Atlas is a square texture filled with glyph bitmaps by shelf packing.
//
// Bitmaps are placed left to right in the current row. A bitmap that does
// not fit starts a new row directly below the tallest bitmap of the
// current one. Rows are never reclaimed.
type Atlas struct {
	id     int
	tex    gpu.Texture
	width  int
	height int

	// rowExtent is the next free column of the current row.
	rowExtent int
	// rowBaseline is the top of the current row.
	rowBaseline int
	// rowTallest is the tallest bitmap in the current row.
	rowTallest int
}

// newAtlas allocates an RGBA texture of size x size.
func newAtlas(dev gpu.Device, id, size int) (*Atlas, error) {
	tex, err := dev.NewTexture(gputypes.TextureFormatRGBA8Unorm, size, size)
	if err != nil {
		return nil, fmt.Errorf("text: atlas %d texture: %w", id, err)
	}
	return &Atlas{
		id:     id,
		tex:    tex,
		width:  size,
		height: size,
	}, nil
}

// ID returns the atlas index.
func (a *Atlas) ID() int { return a.id }

// Size returns the texture dimensions.
func (a *Atlas) Size() image.Point { return image.Pt(a.width, a.height) }

// Texture returns the atlas texture.
func (a *Atlas) Texture() gpu.Texture { return a.tex }

// Cursor returns the packing cursor: the next free column of the current
// row, the row's top and its tallest bitmap so far.
func (a *Atlas) Cursor() (extent, baseline, tallest int) {
	return a.rowExtent, a.rowBaseline, a.rowTallest
}

// insert uploads bmp into the atlas and returns its placement.
// It fails with ErrGlyphTooLarge or ErrAtlasFull without touching the
// texture, or with the device error if the upload fails.
//
// A row needs height strictly below the space left under its top, so a
// bitmap as tall as the atlas is too large even for an empty one.
func (a *Atlas) insert(gc *graphicsContext, bmp font.Bitmap) (Glyph, error) {
	if bmp.Width > a.width || bmp.Height >= a.height {
		return Glyph{}, fmt.Errorf("%w: %dx%d into %dx%d", ErrGlyphTooLarge, bmp.Width, bmp.Height, a.width, a.height)
	}
	if !a.roomInRow(bmp) {
		if err := a.advanceRow(); err != nil {
			return Glyph{}, err
		}
	}
	if !a.roomInRow(bmp) {
		return Glyph{}, ErrAtlasFull
	}

	format := gpu.PixelFormatRGB
	if bmp.Format == font.FormatRGBA {
		format = gpu.PixelFormatRGBA
	}
	dst := image.Rect(a.rowExtent, a.rowBaseline, a.rowExtent+bmp.Width, a.rowBaseline+bmp.Height)
	err := a.tex.Upload(dst, format, bmp.Pixels)
	gc.invalidate()
	if err != nil {
		return Glyph{}, fmt.Errorf("text: atlas %d upload: %w", a.id, err)
	}

	g := Glyph{
		Atlas:      a.id,
		Multicolor: bmp.Multicolor(),
		Top:        int16(bmp.Top),   //nolint:gosec // glyph metrics fit in int16
		Left:       int16(bmp.Left),  //nolint:gosec // glyph metrics fit in int16
		Width:      int16(bmp.Width), //nolint:gosec // bounded by atlas size
		Height:     int16(bmp.Height),
		UVLeft:     float32(a.rowExtent) / float32(a.width),
		UVBot:      float32(a.rowBaseline) / float32(a.height),
		UVWidth:    float32(bmp.Width) / float32(a.width),
		UVHeight:   float32(bmp.Height) / float32(a.height),
		tex:        a.tex,
	}

	a.rowExtent += bmp.Width
	a.rowTallest = max(a.rowTallest, bmp.Height)
	return g, nil
}

// roomInRow reports whether bmp fits the current row.
func (a *Atlas) roomInRow(bmp font.Bitmap) bool {
	return a.rowExtent+bmp.Width <= a.width && bmp.Height < a.height-a.rowBaseline
}

// advanceRow starts a new row below the current one.
func (a *Atlas) advanceRow() error {
	advanceTo := a.rowBaseline + a.rowTallest
	if a.height-advanceTo <= 0 {
		return ErrAtlasFull
	}
	a.rowBaseline = advanceTo
	a.rowExtent = 0
	a.rowTallest = 0
	return nil
}

// emptyGlyph is a zero-size placement that keeps the atlas bound.
func (a *Atlas) emptyGlyph() Glyph {
	return Glyph{Atlas: a.id, tex: a.tex}
}

func (a *Atlas) release() {
	if a.tex != nil {
		a.tex.Release()
		a.tex = nil
	}
}
