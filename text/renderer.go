package text

import (
	"errors"
	"fmt"
	"image/color"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/text/unicode/norm"

	"github.com/BergerAPI/renderer"
	"github.com/BergerAPI/renderer/font"
	"github.com/BergerAPI/renderer/gpu"
	"github.com/BergerAPI/renderer/internal/cache"
)

// Renderer draws text through glyph atlases and an instanced batch.
type Renderer struct {
	dev  gpu.Device
	rast font.Rasterizer
	cfg  Config

	fontKey font.Key
	size    font.Size
	metrics font.Metrics

	gc        *graphicsContext
	program   gpu.Program
	indices   gpu.Buffer
	instances gpu.Buffer
	vao       gpu.VertexArray

	atlases []*Atlas
	current int
	glyphs  *cache.Store[font.GlyphKey, Glyph]
	batch   *Batch

	draws  int
	closed bool
}

// Stats describes the renderer's caches.
type Stats struct {
	Atlases int
	Glyphs  int
	Hits    uint64
	Misses  uint64
	// HitRate is Hits / (Hits + Misses), 0 before the first lookup.
	HitRate float64
	Draws   int
	Pending int
}

// New creates a renderer drawing into a width x height pixel viewport with
// the origin at the top left.
//
// New loads the configured font, builds the text program and allocates the
// instance buffer and the first atlas. A *gpu.ShaderError from the device
// is returned wrapped. On failure every resource created so far is
// released.
func New(dev gpu.Device, rast font.Rasterizer, width, height float32, opts ...Option) (_ *Renderer, err error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	size := font.NewSize(cfg.FontSize)
	key, err := rast.LoadFont(cfg.Font, size)
	if err != nil {
		return nil, fmt.Errorf("text: load font: %w", err)
	}
	metrics, err := rast.Metrics(key, size)
	if err != nil {
		return nil, fmt.Errorf("text: font metrics: %w", err)
	}

	r := &Renderer{
		dev:     dev,
		rast:    rast,
		cfg:     cfg,
		fontKey: key,
		size:    size,
		metrics: metrics,
		gc:      newGraphicsContext(dev),
		glyphs:  cache.New[font.GlyphKey, Glyph](),
		batch:   NewBatch(cfg.BatchCapacity),
	}
	defer func() {
		if err != nil {
			r.release()
		}
	}()

	if r.program, err = dev.NewProgram(textSources()); err != nil {
		return nil, fmt.Errorf("text: create program: %w", err)
	}
	if r.indices, err = dev.NewImmutableBuffer(gpu.BufferBindingIndices, quadIndexData()); err != nil {
		return nil, fmt.Errorf("text: index buffer: %w", err)
	}
	if r.instances, err = dev.NewBuffer(gpu.BufferBindingVertices, cfg.BatchCapacity*InstanceSize); err != nil {
		return nil, fmt.Errorf("text: instance buffer: %w", err)
	}
	if r.vao, err = dev.NewVertexArray(instanceLayout, r.instances, r.indices); err != nil {
		return nil, fmt.Errorf("text: vertex array: %w", err)
	}
	atlas, err := newAtlas(dev, 0, cfg.AtlasSize)
	if err != nil {
		return nil, err
	}
	r.atlases = append(r.atlases, atlas)

	r.program.SetInt(uniformMask, 0)
	r.SetViewport(width, height)

	renderer.Logger().Debug("text: renderer ready",
		"font", cfg.Font.Family, "size", size, "atlas", cfg.AtlasSize, "batch", cfg.BatchCapacity)
	return r, nil
}

// SetViewport updates the projection for a width x height viewport.
func (r *Renderer) SetViewport(width, height float32) {
	if r.closed {
		return
	}
	r.program.SetMat4(uniformProjection, mgl32.Ortho2D(0, width, height, 0))
	r.program.SetVec2(uniformCellDim, mgl32.Vec2{
		float32(r.metrics.AverageAdvance) + r.cfg.Spacing,
		float32(r.metrics.Ascent),
	})
}

// DrawChar draws one white character with its line top-left at (x, y) and
// flushes.
func (r *Renderer) DrawChar(c rune, x, y float32) error {
	if r.closed {
		return ErrClosed
	}
	if r.batch.Len() >= r.batch.Cap() {
		return fmt.Errorf("%w: capacity %d", ErrBatchOverflow, r.batch.Cap())
	}
	if err := r.add(x, y, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, r.resolve(c)); err != nil {
		return err
	}
	return r.Flush()
}

// DrawString draws s left to right starting at (x, y) in color c and
// flushes once at the end. Strings that do not fit the remaining batch
// capacity are rejected with ErrBatchOverflow before anything is drawn.
func (r *Renderer) DrawString(s string, x, y float32, c color.Color) error {
	if r.closed {
		return ErrClosed
	}
	s = r.prepare(s)
	if n := utf8.RuneCountInString(s); r.batch.Len()+n > r.batch.Cap() {
		return fmt.Errorf("%w: %d pending + %d runes > %d", ErrBatchOverflow, r.batch.Len(), n, r.batch.Cap())
	}

	fg := toRGBA(c)
	cursor := x
	for _, ch := range s {
		g := r.resolve(ch)
		if err := r.add(cursor, y, fg, g); err != nil {
			return err
		}
		cursor += r.advance(g)
	}
	return r.Flush()
}

// Length returns the width DrawString would advance over s.
func (r *Renderer) Length(s string) float32 {
	if r.closed {
		return 0
	}
	var w float32
	for _, ch := range r.prepare(s) {
		w += r.advance(r.resolve(ch))
	}
	return w
}

// Height returns the line height of the font.
func (r *Renderer) Height() float32 {
	return float32(r.metrics.LineHeight)
}

// Warm resolves every character of chars into the glyph cache without
// drawing, e.g. the printable ASCII range at startup.
func (r *Renderer) Warm(chars string) {
	if r.closed {
		return
	}
	for _, ch := range r.prepare(chars) {
		r.resolve(ch)
	}
}

// Flush uploads the pending instances and draws them with one instanced
// call. The device is left with no program or vertex array bound; the
// atlas texture stays bound on unit 0.
func (r *Renderer) Flush() error {
	if r.closed {
		return ErrClosed
	}
	if r.batch.Empty() {
		return nil
	}
	defer r.batch.Clear()

	r.dev.BindProgram(r.program)
	r.dev.BindVertexArray(r.vao)
	defer func() {
		r.dev.BindVertexArray(nil)
		r.dev.BindProgram(nil)
	}()

	if err := r.instances.Upload(0, r.batch.Bytes()); err != nil {
		return fmt.Errorf("text: upload instances: %w", err)
	}
	r.gc.bindTexture(r.batch.Texture())
	r.dev.DrawElementsInstanced(len(quadIndices), r.batch.Len())
	r.draws++
	return nil
}

// Stats returns cache and draw counters.
func (r *Renderer) Stats() Stats {
	cs := r.glyphs.Stats()
	return Stats{
		Atlases: len(r.atlases),
		Glyphs:  cs.Len,
		Hits:    cs.Hits,
		Misses:  cs.Misses,
		HitRate: cs.HitRate(),
		Draws:   r.draws,
		Pending: r.batch.Len(),
	}
}

// Close releases the atlases, buffers and program. Pending instances are
// discarded. Close is idempotent.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.release()
	r.closed = true
	return nil
}

func (r *Renderer) release() {
	for _, a := range r.atlases {
		a.release()
	}
	r.atlases = nil
	if r.vao != nil {
		r.vao.Release()
		r.vao = nil
	}
	if r.instances != nil {
		r.instances.Release()
		r.instances = nil
	}
	if r.indices != nil {
		r.indices.Release()
		r.indices = nil
	}
	if r.program != nil {
		r.program.Release()
		r.program = nil
	}
	r.batch.Clear()
	r.gc.invalidate()
}

// add appends g to the batch, flushing first when g lives in another atlas.
func (r *Renderer) add(x, y float32, c color.RGBA, g Glyph) error {
	if !r.batch.Empty() && r.batch.Texture() != g.tex {
		if err := r.Flush(); err != nil {
			return err
		}
	}
	return r.batch.Add(x, y, c, g)
}

// advance is the pen advance after g.
func (r *Renderer) advance(g Glyph) float32 {
	return max(float32(g.Width), float32(r.metrics.AverageAdvance)) + r.cfg.Spacing
}

func (r *Renderer) prepare(s string) string {
	if r.cfg.Normalize {
		return norm.NFC.String(s)
	}
	return s
}

// resolve returns the placement of c, rasterizing and packing it on the
// first request.
func (r *Renderer) resolve(c rune) Glyph {
	key := font.GlyphKey{Font: r.fontKey, Char: c, Size: r.size}
	if g, ok := r.glyphs.Get(key); ok {
		return g
	}

	bmp, err := r.rast.Glyph(key)
	var missing *font.MissingGlyphError
	switch {
	case err == nil:
		g := r.load(bmp)
		r.glyphs.Put(key, g)
		return g

	case errors.As(err, &missing):
		// All missing characters of a font and size share one placement.
		sentinel := font.GlyphKey{Font: key.Font, Size: key.Size}
		g, ok := r.glyphs.Peek(sentinel)
		if !ok {
			g = r.load(missing.Glyph)
			r.glyphs.Put(sentinel, g)
		}
		r.glyphs.Put(key, g)
		return g

	default:
		// Not cached: the next request retries the rasterizer.
		renderer.Logger().Warn("text: rasterizer failed, drawing empty glyph", "char", c, "err", err)
		return r.placeholder()
	}
}

// placeholder is an empty glyph on the pending batch's atlas, or on the
// current one when nothing is pending, so drawing it never splits a batch.
func (r *Renderer) placeholder() Glyph {
	if tex := r.batch.Texture(); tex != nil {
		for _, a := range r.atlases {
			if a.tex == tex {
				return a.emptyGlyph()
			}
		}
	}
	return r.atlases[r.current].emptyGlyph()
}

// load packs bmp into the current atlas, opening new atlases while the
// current one is full. It tries at most len(atlases)+1 atlases.
func (r *Renderer) load(bmp font.Bitmap) Glyph {
	log := renderer.Logger()
	attempts := len(r.atlases) + 1
	for range attempts {
		atlas := r.atlases[r.current]
		g, err := atlas.insert(r.gc, bmp)
		switch {
		case err == nil:
			return g

		case errors.Is(err, ErrAtlasFull):
			if r.current+1 == len(r.atlases) {
				next, err := newAtlas(r.dev, len(r.atlases), r.cfg.AtlasSize)
				if err != nil {
					log.Warn("text: cannot open atlas, drawing empty glyph", "err", err)
					return atlas.emptyGlyph()
				}
				r.atlases = append(r.atlases, next)
				log.Debug("text: atlas allocated", "index", next.id, "size", r.cfg.AtlasSize)
			}
			r.current++
			r.gc.invalidate()

		case errors.Is(err, ErrGlyphTooLarge):
			log.Warn("text: glyph larger than atlas, drawing empty glyph", "err", err)
			return atlas.emptyGlyph()

		default:
			log.Warn("text: glyph upload failed, drawing empty glyph", "err", err)
			return atlas.emptyGlyph()
		}
	}
	log.Warn("text: glyph does not fit an empty atlas, drawing empty glyph",
		"width", bmp.Width, "height", bmp.Height)
	return r.atlases[r.current].emptyGlyph()
}

// toRGBA converts c to straight-alpha RGB. A nil color is white.
func toRGBA(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.RGBA{R: n.R, G: n.G, B: n.B, A: 0xff}
}

// Hex returns the opaque color 0xRRGGBB.
func Hex(rgb uint32) color.RGBA {
	return color.RGBA{
		R: uint8(rgb >> 16), //nolint:gosec // masked by truncation
		G: uint8(rgb >> 8),  //nolint:gosec // masked by truncation
		B: uint8(rgb),       //nolint:gosec // masked by truncation
		A: 0xff,
	}
}
