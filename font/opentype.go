package font

import (
	"bytes"
	"fmt"
	"image"
	"math"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/draw"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/BergerAPI/renderer"
	"github.com/BergerAPI/renderer/internal/cache"
)

// OpenType is a Rasterizer backed by golang.org/x/image/font/opentype.
//
// OpenType is not safe for concurrent use. It is meant to be owned by a
// single text renderer on the thread that owns the graphics context.
type OpenType struct {
	cfg    config
	byDesc map[Desc]Key
	fonts  []*loadedFont
}

// loadedFont is a parsed font with one face per requested size.
type loadedFont struct {
	desc    Desc
	otf     *opentype.Font
	color   *gtfont.Face
	faces   *cache.Store[Size, xfont.Face]
	metrics *cache.Store[Size, Metrics]
	buf     sfnt.Buffer
}

var _ Rasterizer = (*OpenType)(nil)

// NewOpenType creates a rasterizer with the built-in Go font families and
// any families added with WithFamily.
func NewOpenType(opts ...Option) *OpenType {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &OpenType{
		cfg:    cfg,
		byDesc: make(map[Desc]Key),
	}
}

// FamilyName reads the family name stored in font data.
func FamilyName(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFontData
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return "", fmt.Errorf("font: failed to parse font: %w", err)
	}
	return f.Name(nil, sfnt.NameIDFamily)
}

// LoadFont implements Rasterizer.
func (o *OpenType) LoadFont(desc Desc, size Size) (Key, error) {
	if key, ok := o.byDesc[desc]; ok {
		if _, err := o.fonts[key].face(size, &o.cfg); err != nil {
			return 0, err
		}
		return key, nil
	}

	data, err := o.cfg.lookup(desc)
	if err != nil {
		return 0, err
	}
	otf, err := opentype.Parse(data)
	if err != nil {
		return 0, fmt.Errorf("font: failed to parse %q: %w", desc.Family, err)
	}

	lf := &loadedFont{
		desc:    desc,
		otf:     otf,
		faces:   cache.New[Size, xfont.Face](),
		metrics: cache.New[Size, Metrics](),
	}
	if o.cfg.color {
		face, err := gtfont.ParseTTF(bytes.NewReader(data))
		if err != nil {
			renderer.Logger().Debug("font: color glyph lookup disabled", "family", desc.Family, "err", err)
		} else {
			lf.color = face
		}
	}
	if _, err := lf.face(size, &o.cfg); err != nil {
		return 0, err
	}

	key := Key(len(o.fonts))
	o.fonts = append(o.fonts, lf)
	o.byDesc[desc] = key
	renderer.Logger().Debug("font: loaded", "family", desc.Family, "key", key, "size", size)
	return key, nil
}

// Metrics implements Rasterizer.
func (o *OpenType) Metrics(key Key, size Size) (Metrics, error) {
	lf, err := o.font(key)
	if err != nil {
		return Metrics{}, err
	}
	return lf.metrics.GetOrCreate(size, func() (Metrics, error) {
		face, err := lf.face(size, &o.cfg)
		if err != nil {
			return Metrics{}, err
		}
		fm := face.Metrics()
		return Metrics{
			LineHeight:     fixedToFloat64(fm.Height),
			Ascent:         fixedToFloat64(fm.Ascent),
			Descent:        fixedToFloat64(fm.Descent),
			AverageAdvance: averageAdvance(face),
		}, nil
	})
}

// Glyph implements Rasterizer.
func (o *OpenType) Glyph(key GlyphKey) (Bitmap, error) {
	lf, err := o.font(key.Font)
	if err != nil {
		return Bitmap{}, err
	}
	face, err := lf.face(key.Size, &o.cfg)
	if err != nil {
		return Bitmap{}, err
	}

	if lf.color != nil {
		if bmp, ok := lf.colorGlyph(key.Char, face); ok {
			return bmp, nil
		}
	}

	idx, err := lf.otf.GlyphIndex(&lf.buf, key.Char)
	if err != nil {
		return Bitmap{}, fmt.Errorf("font: glyph index for U+%04X: %w", key.Char, err)
	}

	if idx == 0 {
		// The face reports unmapped runes as having no bounds, so .notdef
		// is drawn from its outline.
		bmp, err := lf.notdef(key.Size, &o.cfg)
		if err != nil {
			return Bitmap{}, err
		}
		return bmp, &MissingGlyphError{Char: key.Char, Glyph: bmp}
	}
	return rasterize(face, key.Char)
}

func (o *OpenType) font(key Key) (*loadedFont, error) {
	if int(key) >= len(o.fonts) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKey, key)
	}
	return o.fonts[key], nil
}

// face returns the face for size, creating it on first use.
func (lf *loadedFont) face(size Size, cfg *config) (xfont.Face, error) {
	return lf.faces.GetOrCreate(size, func() (xfont.Face, error) {
		f, err := opentype.NewFace(lf.otf, &opentype.FaceOptions{
			Size:    size.Points(),
			DPI:     cfg.dpi,
			Hinting: cfg.hinting,
		})
		if err != nil {
			return nil, fmt.Errorf("font: face for %q at %v: %w", lf.desc.Family, size, err)
		}
		return f, nil
	})
}

// rasterize draws r into an alpha mask sized to its bounds and expands the
// coverage to RGB.
func rasterize(face xfont.Face, r rune) (Bitmap, error) {
	bounds, _, ok := face.GlyphBounds(r)
	if !ok {
		return Bitmap{}, fmt.Errorf("%w: U+%04X", ErrRasterize, r)
	}

	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	maxX, maxY := bounds.Max.X.Ceil(), bounds.Max.Y.Ceil()
	bmp := Bitmap{
		Width:  maxX - minX,
		Height: maxY - minY,
		Left:   minX,
		Top:    -minY,
		Format: FormatRGB,
	}
	if bmp.Width <= 0 || bmp.Height <= 0 {
		// No ink, e.g. a space.
		bmp.Width, bmp.Height = 0, 0
		return bmp, nil
	}

	mask := image.NewAlpha(image.Rect(0, 0, bmp.Width, bmp.Height))
	d := xfont.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(-minX, -minY),
	}
	d.DrawString(string(r))

	bmp.Pixels = expandAlpha(mask.Pix)
	return bmp, nil
}

// notdef rasterizes glyph index 0 at size.
func (lf *loadedFont) notdef(size Size, cfg *config) (Bitmap, error) {
	ppem := fixed.Int26_6(math.Round(size.Points() * cfg.dpi / 72 * 64))
	bounds, _, err := lf.otf.GlyphBounds(&lf.buf, 0, ppem, cfg.hinting)
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: .notdef bounds: %w", ErrRasterize, err)
	}

	minX, minY := bounds.Min.X.Floor(), bounds.Min.Y.Floor()
	bmp := Bitmap{
		Width:  bounds.Max.X.Ceil() - minX,
		Height: bounds.Max.Y.Ceil() - minY,
		Left:   minX,
		Top:    -minY,
		Format: FormatRGB,
	}
	if bmp.Width <= 0 || bmp.Height <= 0 {
		bmp.Width, bmp.Height = 0, 0
		return bmp, nil
	}

	segments, err := lf.otf.LoadGlyph(&lf.buf, 0, ppem, nil)
	if err != nil {
		return Bitmap{}, fmt.Errorf("%w: .notdef outline: %w", ErrRasterize, err)
	}
	mask := image.NewAlpha(image.Rect(0, 0, bmp.Width, bmp.Height))
	outlineMask(mask, segments, fixed.P(-minX, -minY))
	bmp.Pixels = expandAlpha(mask.Pix)
	return bmp, nil
}

// outlineMask fills the outline, shifted by dot, into mask.
func outlineMask(mask *image.Alpha, segments sfnt.Segments, dot fixed.Point26_6) {
	b := mask.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Src
	pt := func(p fixed.Point26_6) (float32, float32) {
		return float32(p.X+dot.X) / 64, float32(p.Y+dot.Y) / 64
	}
	for i, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if i > 0 {
				z.ClosePath()
			}
			z.MoveTo(pt(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(seg.Args[0])
			cx, cy := pt(seg.Args[1])
			dx, dy := pt(seg.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}
	z.ClosePath()
	z.Draw(mask, b, image.Opaque, image.Point{})
}

// expandAlpha copies coverage into the three channels of an RGB bitmap.
func expandAlpha(alpha []byte) []byte {
	px := make([]byte, len(alpha)*3)
	for i, a := range alpha {
		px[i*3] = a
		px[i*3+1] = a
		px[i*3+2] = a
	}
	return px
}

// averageAdvance returns the mean advance of the printable ASCII range.
func averageAdvance(face xfont.Face) float64 {
	var sum fixed.Int26_6
	n := 0
	for r := rune(0x20); r < 0x7F; r++ {
		adv, ok := face.GlyphAdvance(r)
		if !ok || adv <= 0 {
			continue
		}
		sum += adv
		n++
	}
	if n == 0 {
		return 0
	}
	return fixedToFloat64(sum) / float64(n)
}

func fixedToFloat64(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
