package font

import (
	"bytes"
	"image"
	_ "image/jpeg" // decoder for JPG strikes
	_ "image/png"  // decoder for PNG strikes
	"math"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/draw"
	xfont "golang.org/x/image/font"

	"github.com/BergerAPI/renderer"
)

// colorGlyph looks up a bitmap strike for r and scales it to one em of the
// face. It reports false when the font has no color image for r.
func (lf *loadedFont) colorGlyph(r rune, face xfont.Face) (Bitmap, bool) {
	gid, ok := lf.color.NominalGlyph(r)
	if !ok {
		return Bitmap{}, false
	}
	data, ok := lf.color.GlyphData(gid).(gtfont.GlyphBitmap)
	if !ok {
		return Bitmap{}, false
	}
	switch data.Format {
	case gtfont.PNG, gtfont.JPG:
	default:
		return Bitmap{}, false
	}

	src, _, err := image.Decode(bytes.NewReader(data.Data))
	if err != nil {
		renderer.Logger().Debug("font: undecodable color glyph", "char", r, "err", err)
		return Bitmap{}, false
	}
	sb := src.Bounds()
	if sb.Dx() == 0 || sb.Dy() == 0 {
		return Bitmap{}, false
	}

	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	w := int(math.Round(float64(sb.Dx()) * float64(h) / float64(sb.Dy())))
	if w <= 0 || h <= 0 {
		return Bitmap{}, false
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Src, nil)
	return Bitmap{
		Width:  w,
		Height: h,
		Left:   0,
		Top:    m.Ascent.Ceil(),
		Format: FormatRGBA,
		Pixels: dst.Pix,
	}, true
}
